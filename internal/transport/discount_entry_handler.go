package transport

import (
	"net/http"

	"pricewatch/internal/domain"
	"pricewatch/internal/middleware"
	"pricewatch/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const discountEntriesPath = "/api/discount-entries"

// DiscountEntryHandler handles HTTP requests for discount entries
type DiscountEntryHandler struct {
	discountService service.DiscountEntryService
	logger          *zap.Logger
}

// NewDiscountEntryHandler creates a new DiscountEntryHandler
func NewDiscountEntryHandler(discountService service.DiscountEntryService, logger *zap.Logger) *DiscountEntryHandler {
	return &DiscountEntryHandler{
		discountService: discountService,
		logger:          logger,
	}
}

// RegisterRoutes registers all discount entry routes
func (h *DiscountEntryHandler) RegisterRoutes(r chi.Router) {
	r.Route(discountEntriesPath, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /api/discount-entries?productId=&newDiscounts=&orderByDiscountPercentageDesc=
func (h *DiscountEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	var params service.DiscountEntryListParams
	var err error

	if params.ProductID, err = queryParam(r, "productId", "productid"); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}
	if params.NewDiscounts, err = queryBool(r, "newDiscounts"); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}
	if params.OrderByDiscountPercentageDesc, err = queryBool(r, "orderByDiscountPercentageDesc"); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	entries, err := h.discountService.List(r.Context(), params)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list discount entries")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newDiscountEntryResponses(entries))
}

func (h *DiscountEntryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	entry, err := h.discountService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get discount entry")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newDiscountEntryResponse(entry))
}

func (h *DiscountEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	created, err := h.discountService.Create(r.Context(), entry)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to create discount entry")
		return
	}

	h.logger.Info("Discount entry created", zap.String("id", created.ID), zap.String("product_id", created.ProductID))
	w.Header().Set("Location", discountEntriesPath+"/"+created.ID)
	middleware.RespondWithJSON(w, http.StatusCreated, newDiscountEntryResponse(created))
}

func (h *DiscountEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	incoming, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	existing, err := h.discountService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get discount entry")
		return
	}

	updated, err := h.discountService.Update(r.Context(), existing, incoming)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to update discount entry")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newDiscountEntryResponse(updated))
}

func (h *DiscountEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.discountService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, h.logger, err, "failed to delete discount entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeEntry writes the 400 response itself and reports false on failure
func (h *DiscountEntryHandler) decodeEntry(w http.ResponseWriter, r *http.Request) (*domain.DiscountEntry, bool) {
	var req DiscountEntryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return nil, false
	}

	entry := req.toDomain()
	if err := entry.Validate(); err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{{Field: "toDate", Message: err.Error()}})
		return nil, false
	}
	return entry, true
}
