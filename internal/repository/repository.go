package repository

import (
	"context"
	"errors"
	"fmt"

	"pricewatch/internal/domain"
)

var (
	ErrPriceEntryNotFound    = fmt.Errorf("price entry %w", domain.ErrNotFound)
	ErrDiscountEntryNotFound = fmt.Errorf("discount entry %w", domain.ErrNotFound)
	ErrProcessedFileExists   = errors.New("file has already been processed")
)

// PriceEntryRepository defines the interface for price entry data access.
// Find with an empty filter returns every entry. DeleteByID succeeds when the
// entry does not exist.
type PriceEntryRepository interface {
	Find(ctx context.Context, filter domain.PriceEntryFilter, sort domain.Sort) ([]*domain.PriceEntry, error)
	FindByID(ctx context.Context, id string) (*domain.PriceEntry, error)
	Save(ctx context.Context, entry *domain.PriceEntry) (*domain.PriceEntry, error)
	DeleteByID(ctx context.Context, id string) error
}

// DiscountEntryRepository defines the interface for discount entry data access
type DiscountEntryRepository interface {
	Find(ctx context.Context, filter domain.DiscountEntryFilter, sort domain.Sort) ([]*domain.DiscountEntry, error)
	FindByID(ctx context.Context, id string) (*domain.DiscountEntry, error)
	Save(ctx context.Context, entry *domain.DiscountEntry) (*domain.DiscountEntry, error)
	DeleteByID(ctx context.Context, id string) error
}

// ProcessedFileRepository keeps track of imported files
type ProcessedFileRepository interface {
	Save(ctx context.Context, file *domain.ProcessedFile) (*domain.ProcessedFile, error)
	ExistsByFileName(ctx context.Context, fileName string) (bool, error)
	List(ctx context.Context) ([]*domain.ProcessedFile, error)
}

// Stores groups the repositories of one storage backend
type Stores struct {
	PriceEntries    PriceEntryRepository
	DiscountEntries DiscountEntryRepository
	ProcessedFiles  ProcessedFileRepository
	Ping            func(ctx context.Context) error
	Close           func(ctx context.Context) error
}
