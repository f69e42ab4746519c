package domain

import "time"

// ProcessedFile records an ingested import file so it is never imported twice
type ProcessedFile struct {
	ID            string    `json:"id"`
	FileName      string    `json:"fileName"`
	ProcessedDate time.Time `json:"processedDate"`
}
