package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"pricewatch/internal/ingest"
	"pricewatch/internal/middleware"
	"pricewatch/internal/pkg/clock"
	"pricewatch/internal/repository"
	"pricewatch/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type testAPI struct {
	router *chi.Mux
	clock  *clock.MockClock
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	stores := repository.NewMemoryStores()
	clk := clock.NewMockClock(testNow)
	logger := zap.NewNop()

	prices := service.NewPriceEntryService(stores.PriceEntries)
	discounts := service.NewDiscountEntryService(stores.DiscountEntries, clk)
	importer := ingest.NewImporter(prices, discounts, stores.ProcessedFiles, clk, logger)

	r := chi.NewRouter()
	NewPriceEntryHandler(prices, logger).RegisterRoutes(r)
	NewDiscountEntryHandler(discounts, logger).RegisterRoutes(r)
	NewImportHandler(importer, logger).RegisterRoutes(r)

	return &testAPI{router: r, clock: clk}
}

func (a *testAPI) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func validationFields(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	response := decodeBody[middleware.ErrorResponse](t, w)
	raw, ok := response.Error.Details["validation_errors"].([]interface{})
	require.True(t, ok, "no validation errors in %s", w.Body.String())

	fields := make([]string, 0, len(raw))
	for _, item := range raw {
		fields = append(fields, item.(map[string]interface{})["field"].(string))
	}
	return fields
}
