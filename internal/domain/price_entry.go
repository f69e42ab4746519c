package domain

import (
	"errors"
	"time"
)

var ErrNegativePrice = errors.New("price must not be negative")

// PriceEntry represents a price observed for a product in a store on a given date
type PriceEntry struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"productId"`
	ProductCategory string    `json:"productCategory"`
	Brand           string    `json:"brand"`
	StoreName       string    `json:"storeName"`
	Price           float64   `json:"price"`
	Date            time.Time `json:"date"`
}

// PriceHistoryRecord is the read view returned by the price history query
type PriceHistoryRecord struct {
	ProductID       string
	ProductCategory string
	Brand           string
	StoreName       string
	Price           float64
	Date            time.Time
}

// Validate checks the business rules that are not expressed as request tags
func (e *PriceEntry) Validate() error {
	if e.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// ApplyPriceEntryUpdate returns a copy of existing with every mutable field
// taken from incoming. The identifier of existing is kept.
func ApplyPriceEntryUpdate(existing, incoming *PriceEntry) *PriceEntry {
	updated := *existing
	updated.ProductID = incoming.ProductID
	updated.ProductCategory = incoming.ProductCategory
	updated.Brand = incoming.Brand
	updated.StoreName = incoming.StoreName
	updated.Price = incoming.Price
	updated.Date = DateOf(incoming.Date)
	return &updated
}

// ToHistoryRecord projects the entry into its history view
func (e *PriceEntry) ToHistoryRecord() *PriceHistoryRecord {
	return &PriceHistoryRecord{
		ProductID:       e.ProductID,
		ProductCategory: e.ProductCategory,
		Brand:           e.Brand,
		StoreName:       e.StoreName,
		Price:           e.Price,
		Date:            e.Date,
	}
}

// PriceEntryFilter is a conjunction of equality predicates. Empty fields match anything.
type PriceEntryFilter struct {
	ProductID       string
	StoreName       string
	ProductCategory string
	Brand           string
}

// IsEmpty reports whether the filter matches every entry
func (f PriceEntryFilter) IsEmpty() bool {
	return f == PriceEntryFilter{}
}

// Matches reports whether the entry satisfies every set predicate
func (f PriceEntryFilter) Matches(e *PriceEntry) bool {
	if f.IsEmpty() {
		return true
	}
	if f.ProductID != "" && e.ProductID != f.ProductID {
		return false
	}
	if f.StoreName != "" && e.StoreName != f.StoreName {
		return false
	}
	if f.ProductCategory != "" && e.ProductCategory != f.ProductCategory {
		return false
	}
	if f.Brand != "" && e.Brand != f.Brand {
		return false
	}
	return true
}
