package main

import (
	"context"
	"fmt"

	"pricewatch/internal/config"
	"pricewatch/internal/database"
	"pricewatch/internal/repository"

	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// openStores connects the storage backend selected by STORE_DRIVER
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		return openPostgresStores(ctx, cfg, log)
	case config.StoreDriverMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		return repository.NewMemoryStores(), nil
	default:
		return openMongoStores(ctx, cfg, log)
	}
}

func openMongoStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Stores, error) {
	client, db, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}

	if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
	}
	log.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	return &repository.Stores{
		PriceEntries:    repository.NewMongoPriceEntryRepository(db),
		DiscountEntries: repository.NewMongoDiscountEntryRepository(db),
		ProcessedFiles:  repository.NewMongoProcessedFileRepository(db),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: client.Disconnect,
	}, nil
}

func openPostgresStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Stores, error) {
	dbService, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	db := dbService.DB()

	log.Info("Database health check", zap.Any("health", dbService.Health(ctx)))

	if err := database.RunMigrations(db, database.MigrationsDir, log); err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database migrations completed successfully")

	return &repository.Stores{
		PriceEntries:    repository.NewPriceEntryRepository(db),
		DiscountEntries: repository.NewDiscountEntryRepository(db),
		ProcessedFiles:  repository.NewProcessedFileRepository(db),
		Ping:            db.PingContext,
		Close: func(context.Context) error {
			return dbService.Close()
		},
	}, nil
}
