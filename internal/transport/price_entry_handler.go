package transport

import (
	"net/http"

	"pricewatch/internal/middleware"
	"pricewatch/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const priceEntriesPath = "/api/price-entries"

// PriceEntryHandler handles HTTP requests for price entries
type PriceEntryHandler struct {
	priceService service.PriceEntryService
	logger       *zap.Logger
}

// NewPriceEntryHandler creates a new PriceEntryHandler
func NewPriceEntryHandler(priceService service.PriceEntryService, logger *zap.Logger) *PriceEntryHandler {
	return &PriceEntryHandler{
		priceService: priceService,
		logger:       logger,
	}
}

// RegisterRoutes registers all price entry routes
func (h *PriceEntryHandler) RegisterRoutes(r chi.Router) {
	r.Route(priceEntriesPath, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/history", h.GetPriceHistory)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /api/price-entries?productId=&orderByValue=
func (h *PriceEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, err := queryParam(r, "productId", "productid")
	if err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}
	orderByValue, err := queryBool(r, "orderByValue")
	if err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	entries, err := h.priceService.List(r.Context(), service.PriceEntryListParams{
		ProductID:    productID,
		OrderByValue: orderByValue,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list price entries")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newPriceEntryResponses(entries))
}

// GetPriceHistory handles GET /api/price-entries/history
func (h *PriceEntryHandler) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	var params service.PriceHistoryParams
	var err error

	if params.ProductID, err = queryParam(r, "productId", "productid"); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}
	if params.StoreName, err = queryParam(r, "storeName", "freetext"); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}
	if params.ProductCategory, err = queryParam(r, "productCategory", "freetext"); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}
	if params.Brand, err = queryParam(r, "brand", "freetext"); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	history, err := h.priceService.GetPriceHistory(r.Context(), params)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get price history")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newPriceHistoryResponses(history))
}

func (h *PriceEntryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	entry, err := h.priceService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get price entry")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newPriceEntryResponse(entry))
}

// Create answers 201 with the new entry and its Location
func (h *PriceEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PriceEntryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	created, err := h.priceService.Create(r.Context(), req.toDomain())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to create price entry")
		return
	}

	h.logger.Info("Price entry created", zap.String("id", created.ID), zap.String("product_id", created.ProductID))
	w.Header().Set("Location", priceEntriesPath+"/"+created.ID)
	middleware.RespondWithJSON(w, http.StatusCreated, newPriceEntryResponse(created))
}

// Update replaces every field of an existing entry
func (h *PriceEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req PriceEntryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	existing, err := h.priceService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get price entry")
		return
	}

	updated, err := h.priceService.Update(r.Context(), existing, req.toDomain())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to update price entry")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newPriceEntryResponse(updated))
}

// Delete answers 204 whether or not the entry existed
func (h *PriceEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.priceService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to delete price entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
