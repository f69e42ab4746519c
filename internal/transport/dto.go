package transport

import (
	"time"

	"pricewatch/internal/domain"
)

// PriceEntryRequest is the create and update payload of a price entry
type PriceEntryRequest struct {
	ProductID       string   `json:"productId" validate:"required,productid"`
	ProductCategory string   `json:"productCategory" validate:"required,max=100"`
	Brand           string   `json:"brand" validate:"required,max=100"`
	StoreName       string   `json:"storeName" validate:"required,max=100"`
	Price           *float64 `json:"price" validate:"required,gte=0"`
	Date            string   `json:"date" validate:"required,datetime=2006-01-02"`
}

// PriceEntryResponse is the wire form of a price entry
type PriceEntryResponse struct {
	ID              string  `json:"id"`
	ProductID       string  `json:"productId"`
	ProductCategory string  `json:"productCategory"`
	Brand           string  `json:"brand"`
	StoreName       string  `json:"storeName"`
	Price           float64 `json:"price"`
	Date            string  `json:"date"`
}

// PriceHistoryResponse is one row of a product's price history
type PriceHistoryResponse struct {
	ProductID       string  `json:"productId"`
	ProductCategory string  `json:"productCategory"`
	Brand           string  `json:"brand"`
	StoreName       string  `json:"storeName"`
	Price           float64 `json:"price"`
	Date            string  `json:"date"`
}

// DiscountEntryRequest is the create and update payload of a discount entry
type DiscountEntryRequest struct {
	ProductID            string   `json:"productId" validate:"required,productid"`
	FromDate             string   `json:"fromDate" validate:"required,datetime=2006-01-02"`
	ToDate               string   `json:"toDate" validate:"required,datetime=2006-01-02"`
	PercentageOfDiscount *float64 `json:"percentageOfDiscount" validate:"required,gte=0,lte=100"`
	StoreName            string   `json:"storeName" validate:"required,max=100"`
	Date                 string   `json:"date" validate:"required,datetime=2006-01-02"`
}

// DiscountEntryResponse is the wire form of a discount entry
type DiscountEntryResponse struct {
	ID                   string  `json:"id"`
	ProductID            string  `json:"productId"`
	FromDate             string  `json:"fromDate"`
	ToDate               string  `json:"toDate"`
	PercentageOfDiscount float64 `json:"percentageOfDiscount"`
	StoreName            string  `json:"storeName"`
	Date                 string  `json:"date"`
}

// ProcessedFileResponse is the wire form of an imported file record
type ProcessedFileResponse struct {
	ID            string `json:"id"`
	FileName      string `json:"fileName"`
	ProcessedDate string `json:"processedDate"`
}

// toDomain expects a validated request
func (r *PriceEntryRequest) toDomain() *domain.PriceEntry {
	date, _ := domain.ParseDate(r.Date)
	return &domain.PriceEntry{
		ProductID:       r.ProductID,
		ProductCategory: r.ProductCategory,
		Brand:           r.Brand,
		StoreName:       r.StoreName,
		Price:           *r.Price,
		Date:            date,
	}
}

// toDomain expects a validated request
func (r *DiscountEntryRequest) toDomain() *domain.DiscountEntry {
	fromDate, _ := domain.ParseDate(r.FromDate)
	toDate, _ := domain.ParseDate(r.ToDate)
	date, _ := domain.ParseDate(r.Date)
	return &domain.DiscountEntry{
		ProductID:            r.ProductID,
		FromDate:             fromDate,
		ToDate:               toDate,
		PercentageOfDiscount: *r.PercentageOfDiscount,
		StoreName:            r.StoreName,
		Date:                 date,
	}
}

func newPriceEntryResponse(e *domain.PriceEntry) PriceEntryResponse {
	return PriceEntryResponse{
		ID:              e.ID,
		ProductID:       e.ProductID,
		ProductCategory: e.ProductCategory,
		Brand:           e.Brand,
		StoreName:       e.StoreName,
		Price:           e.Price,
		Date:            formatDate(e.Date),
	}
}

func newPriceEntryResponses(entries []*domain.PriceEntry) []PriceEntryResponse {
	responses := make([]PriceEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, newPriceEntryResponse(e))
	}
	return responses
}

func newPriceHistoryResponses(records []*domain.PriceHistoryRecord) []PriceHistoryResponse {
	responses := make([]PriceHistoryResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, PriceHistoryResponse{
			ProductID:       r.ProductID,
			ProductCategory: r.ProductCategory,
			Brand:           r.Brand,
			StoreName:       r.StoreName,
			Price:           r.Price,
			Date:            formatDate(r.Date),
		})
	}
	return responses
}

func newDiscountEntryResponse(e *domain.DiscountEntry) DiscountEntryResponse {
	return DiscountEntryResponse{
		ID:                   e.ID,
		ProductID:            e.ProductID,
		FromDate:             formatDate(e.FromDate),
		ToDate:               formatDate(e.ToDate),
		PercentageOfDiscount: e.PercentageOfDiscount,
		StoreName:            e.StoreName,
		Date:                 formatDate(e.Date),
	}
}

func newDiscountEntryResponses(entries []*domain.DiscountEntry) []DiscountEntryResponse {
	responses := make([]DiscountEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, newDiscountEntryResponse(e))
	}
	return responses
}

func newProcessedFileResponses(files []*domain.ProcessedFile) []ProcessedFileResponse {
	responses := make([]ProcessedFileResponse, 0, len(files))
	for _, f := range files {
		responses = append(responses, ProcessedFileResponse{
			ID:            f.ID,
			FileName:      f.FileName,
			ProcessedDate: formatDate(f.ProcessedDate),
		})
	}
	return responses
}

// formatDate renders unset dates as an empty string
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return domain.FormatDate(t)
}
