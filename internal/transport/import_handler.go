package transport

import (
	"context"
	"errors"
	"io"
	"net/http"

	"pricewatch/internal/domain"
	"pricewatch/internal/ingest"
	"pricewatch/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadSize = 32 << 20

// FileImporter imports uploaded CSV files
type FileImporter interface {
	Import(ctx context.Context, fileName string, reader io.Reader) (*ingest.ImportResult, error)
	ListProcessedFiles(ctx context.Context) ([]*domain.ProcessedFile, error)
}

// ImportHandler handles CSV uploads and the processed file listing
type ImportHandler struct {
	importer FileImporter
	logger   *zap.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importer FileImporter, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{
		importer: importer,
		logger:   logger,
	}
}

// RegisterRoutes registers the import routes
func (h *ImportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/imports", h.Import)
	r.Get("/api/processed-files", h.ListProcessedFiles)
}

// Import handles a multipart upload with the CSV in the "file" field
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{{Field: "file", Message: "This field is required"}})
		return
	}
	defer file.Close()

	result, err := h.importer.Import(r.Context(), header.Filename, file)
	switch {
	case errors.Is(err, ingest.ErrFileAlreadyProcessed):
		middleware.RespondWithErrorDetails(w, http.StatusConflict, err.Error(), map[string]interface{}{"fileName": header.Filename})
		return
	case errors.Is(err, ingest.ErrEmptyFile), errors.Is(err, ingest.ErrMissingColumn):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondWithServiceError(w, h.logger, err, "failed to import file")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *ImportHandler) ListProcessedFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.importer.ListProcessedFiles(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list processed files")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProcessedFileResponses(files))
}
