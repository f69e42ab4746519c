package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidDiscountRange      = errors.New("fromDate must not be after toDate")
	ErrInvalidDiscountPercentage = errors.New("percentageOfDiscount must be between 0 and 100")
)

// DiscountEntry represents a discount offered for a product in a store over a date range
type DiscountEntry struct {
	ID                   string    `json:"id"`
	ProductID            string    `json:"productId"`
	FromDate             time.Time `json:"fromDate"`
	ToDate               time.Time `json:"toDate"`
	PercentageOfDiscount float64   `json:"percentageOfDiscount"`
	StoreName            string    `json:"storeName"`
	Date                 time.Time `json:"date"`
}

// Validate checks the date range and percentage bounds of the discount
func (e *DiscountEntry) Validate() error {
	if e.FromDate.After(e.ToDate) {
		return ErrInvalidDiscountRange
	}
	if e.PercentageOfDiscount < 0 || e.PercentageOfDiscount > 100 {
		return ErrInvalidDiscountPercentage
	}
	return nil
}

// ApplyDiscountEntryUpdate returns a copy of existing with every mutable field
// taken from incoming. The identifier of existing is kept.
func ApplyDiscountEntryUpdate(existing, incoming *DiscountEntry) *DiscountEntry {
	updated := *existing
	updated.ProductID = incoming.ProductID
	updated.FromDate = DateOf(incoming.FromDate)
	updated.ToDate = DateOf(incoming.ToDate)
	updated.PercentageOfDiscount = incoming.PercentageOfDiscount
	updated.StoreName = incoming.StoreName
	updated.Date = DateOf(incoming.Date)
	return &updated
}

// DiscountEntryFilter selects discount entries. A nil DateAfter disables the recency predicate.
type DiscountEntryFilter struct {
	ProductID string
	DateAfter *time.Time
}

// Matches reports whether the entry satisfies every set predicate
func (f DiscountEntryFilter) Matches(e *DiscountEntry) bool {
	if f.ProductID != "" && e.ProductID != f.ProductID {
		return false
	}
	if f.DateAfter != nil && !e.Date.After(*f.DateAfter) {
		return false
	}
	return true
}
