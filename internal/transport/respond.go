package transport

import (
	"errors"
	"net/http"
	"strconv"

	"pricewatch/internal/domain"
	"pricewatch/internal/middleware"

	"go.uber.org/zap"
)

// respondWithServiceError maps not-found errors to 404 and everything else to a
// 500 carrying only the generic message.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, message string) {
	if errors.Is(err, domain.ErrNotFound) {
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	logger.Error(message, zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, message)
}

// respondWithDecodeError answers a body that failed to decode or validate
func respondWithDecodeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Debug("Request validation failed", zap.Error(err))

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

// queryParam returns the named query parameter validated against tag.
// Absent parameters yield an empty string.
func queryParam(r *http.Request, name, tag string) (string, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return "", nil
	}
	if err := middleware.ValidateVar(name, value, tag); err != nil {
		return "", err
	}
	return value, nil
}

// queryBool parses the named query parameter with strconv.ParseBool. Absent means false.
func queryBool(r *http.Request, name string) (bool, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, &middleware.FieldError{Field: name, Tag: "boolean"}
	}
	return parsed, nil
}
