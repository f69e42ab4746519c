package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pricewatch/internal/config"
	"pricewatch/internal/ingest"
	custommiddleware "pricewatch/internal/middleware"
	"pricewatch/internal/pkg/clock"
	"pricewatch/internal/repository"
	"pricewatch/internal/service"
	"pricewatch/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	stores   *repository.Stores
	redis    *redis.Client
	importer *ingest.Importer
}

// NewServer wires services and handlers over stores. redisClient may be nil
// when rate limiting is disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, stores *repository.Stores, redisClient *redis.Client, clk clock.Clock) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))

	if cfg.RateLimit.Enabled && redisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         "pricewatch_rate_limit",
		}, logger))
	}

	router.Get("/health", healthHandler(stores, logger))

	// Initialize services
	priceService := service.NewPriceEntryService(stores.PriceEntries)
	discountService := service.NewDiscountEntryService(stores.DiscountEntries, clk)
	importer := ingest.NewImporter(priceService, discountService, stores.ProcessedFiles, clk, logger)

	// Register routes
	transport.NewPriceEntryHandler(priceService, logger).RegisterRoutes(router)
	transport.NewDiscountEntryHandler(discountService, logger).RegisterRoutes(router)
	transport.NewImportHandler(importer, logger).RegisterRoutes(router)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:   cfg,
		logger:   logger,
		stores:   stores,
		redis:    redisClient,
		importer: importer,
	}
}

// Importer exposes the file importer for the background directory scan
func (s *Server) Importer() *ingest.Importer {
	return s.importer
}

func healthHandler(stores *repository.Stores, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := stores.Ping(ctx); err != nil {
			logger.Error("Store health check failed", zap.Error(err))
			custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
			return
		}

		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Close releases the store and Redis connections
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.stores.Close(ctx); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
