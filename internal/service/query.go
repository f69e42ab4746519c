package service

import (
	"time"

	"pricewatch/internal/domain"
)

// RecencyWindow is how far back "new" discounts reach
const RecencyWindow = 24 * time.Hour

// PriceEntryListParams are the optional list parameters. Empty ProductID means no filter.
type PriceEntryListParams struct {
	ProductID    string
	OrderByValue bool
}

// PriceHistoryParams are the optional history filters, combined with AND
type PriceHistoryParams struct {
	ProductID       string
	StoreName       string
	ProductCategory string
	Brand           string
}

// DiscountEntryListParams are the optional discount list parameters
type DiscountEntryListParams struct {
	ProductID                     string
	NewDiscounts                  bool
	OrderByDiscountPercentageDesc bool
}

// priceEntryQuery decides the filter and sort for a price entry listing.
// orderByValue sorts by price, highest first.
func priceEntryQuery(params PriceEntryListParams) (domain.PriceEntryFilter, domain.Sort) {
	sort := domain.Unsorted
	if params.OrderByValue {
		sort = domain.SortBy(domain.SortFieldPrice, domain.SortDesc)
	}

	return domain.PriceEntryFilter{ProductID: params.ProductID}, sort
}

// priceHistoryQuery filters on every provided parameter and orders chronologically
func priceHistoryQuery(params PriceHistoryParams) (domain.PriceEntryFilter, domain.Sort) {
	filter := domain.PriceEntryFilter{
		ProductID:       params.ProductID,
		StoreName:       params.StoreName,
		ProductCategory: params.ProductCategory,
		Brand:           params.Brand,
	}

	return filter, domain.SortBy(domain.SortFieldDate, domain.SortAsc)
}

// discountEntryQuery decides the filter and sort for a discount listing.
// Recency is checked first; a productId still narrows the recent discounts.
func discountEntryQuery(params DiscountEntryListParams, now time.Time) (domain.DiscountEntryFilter, domain.Sort) {
	sort := domain.Unsorted
	if params.OrderByDiscountPercentageDesc {
		sort = domain.SortBy(domain.SortFieldPercentageOfDiscount, domain.SortDesc)
	}

	if params.NewDiscounts {
		dayAgo := domain.DateOf(now.Add(-RecencyWindow))
		return domain.DiscountEntryFilter{ProductID: params.ProductID, DateAfter: &dayAgo}, sort
	}

	if params.ProductID != "" {
		return domain.DiscountEntryFilter{ProductID: params.ProductID}, sort
	}

	return domain.DiscountEntryFilter{}, sort
}
