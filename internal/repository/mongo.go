package repository

import (
	"context"
	"fmt"

	"pricewatch/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	PriceEntriesCollection    = "price_entries"
	DiscountEntriesCollection = "discount_entries"
	ProcessedFilesCollection  = "processed_files"
)

var mongoSortFields = map[string]bool{
	domain.SortFieldPrice:                true,
	domain.SortFieldPercentageOfDiscount: true,
	domain.SortFieldDate:                 true,
}

// findOptions translates the requested sort. Unsorted queries keep natural order.
func findOptions(sort domain.Sort) (*options.FindOptions, error) {
	opts := options.Find()
	if sort.IsUnsorted() {
		return opts, nil
	}

	if !mongoSortFields[sort.Field] {
		return nil, fmt.Errorf("unsupported sort field %q", sort.Field)
	}

	direction := 1
	if sort.Direction == domain.SortDesc {
		direction = -1
	}

	return opts.SetSort(bson.D{{Key: sort.Field, Value: direction}}), nil
}

func newDocumentID() string {
	return primitive.NewObjectID().Hex()
}

// EnsureMongoIndexes creates the indexes the Mongo repositories rely on
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		PriceEntriesCollection: {
			{Keys: bson.D{{Key: "productId", Value: 1}}},
			{Keys: bson.D{{Key: "storeName", Value: 1}, {Key: "productCategory", Value: 1}, {Key: "brand", Value: 1}}},
		},
		DiscountEntriesCollection: {
			{Keys: bson.D{{Key: "productId", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
		ProcessedFilesCollection: {
			{Keys: bson.D{{Key: "fileName", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}

	return nil
}
