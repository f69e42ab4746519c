package domain

import (
	"errors"
	"time"
)

// ErrNotFound is matched by every resource specific not-found error
var ErrNotFound = errors.New("not found")

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// SortDirection represents the sort direction
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Sortable fields
const (
	SortFieldPrice                = "price"
	SortFieldPercentageOfDiscount = "percentageOfDiscount"
	SortFieldDate                 = "date"
)

// Sort orders a query by a single field. The zero value leaves the store's natural order.
type Sort struct {
	Field     string
	Direction SortDirection
}

// Unsorted keeps the store's natural order
var Unsorted = Sort{}

// SortBy builds a single field sort
func SortBy(field string, direction SortDirection) Sort {
	return Sort{Field: field, Direction: direction}
}

// IsUnsorted reports whether no ordering was requested
func (s Sort) IsUnsorted() bool {
	return s.Field == ""
}

// DateOf truncates t to its calendar date at midnight UTC
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders a calendar date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
