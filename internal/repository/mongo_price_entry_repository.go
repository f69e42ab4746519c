package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pricewatch/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type priceEntryDocument struct {
	ID              string    `bson:"_id"`
	ProductID       string    `bson:"productId"`
	ProductCategory string    `bson:"productCategory"`
	Brand           string    `bson:"brand"`
	StoreName       string    `bson:"storeName"`
	Price           float64   `bson:"price"`
	Date            time.Time `bson:"date"`
}

func newPriceEntryDocument(e *domain.PriceEntry) priceEntryDocument {
	return priceEntryDocument{
		ID:              e.ID,
		ProductID:       e.ProductID,
		ProductCategory: e.ProductCategory,
		Brand:           e.Brand,
		StoreName:       e.StoreName,
		Price:           e.Price,
		Date:            domain.DateOf(e.Date),
	}
}

func (d priceEntryDocument) toDomain() *domain.PriceEntry {
	return &domain.PriceEntry{
		ID:              d.ID,
		ProductID:       d.ProductID,
		ProductCategory: d.ProductCategory,
		Brand:           d.Brand,
		StoreName:       d.StoreName,
		Price:           d.Price,
		Date:            domain.DateOf(d.Date),
	}
}

type mongoPriceEntryRepository struct {
	collection *mongo.Collection
}

// NewMongoPriceEntryRepository creates a MongoDB backed PriceEntryRepository
func NewMongoPriceEntryRepository(db *mongo.Database) PriceEntryRepository {
	return &mongoPriceEntryRepository{collection: db.Collection(PriceEntriesCollection)}
}

func priceEntryQuery(filter domain.PriceEntryFilter) bson.M {
	query := bson.M{}
	if filter.ProductID != "" {
		query["productId"] = filter.ProductID
	}
	if filter.StoreName != "" {
		query["storeName"] = filter.StoreName
	}
	if filter.ProductCategory != "" {
		query["productCategory"] = filter.ProductCategory
	}
	if filter.Brand != "" {
		query["brand"] = filter.Brand
	}
	return query
}

func (r *mongoPriceEntryRepository) Find(ctx context.Context, filter domain.PriceEntryFilter, sort domain.Sort) ([]*domain.PriceEntry, error) {
	opts, err := findOptions(sort)
	if err != nil {
		return nil, err
	}

	cursor, err := r.collection.Find(ctx, priceEntryQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list price entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []priceEntryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode price entries: %w", err)
	}

	entries := make([]*domain.PriceEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, doc.toDomain())
	}

	return entries, nil
}

func (r *mongoPriceEntryRepository) FindByID(ctx context.Context, id string) (*domain.PriceEntry, error) {
	var doc priceEntryDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPriceEntryNotFound
		}
		return nil, fmt.Errorf("failed to find price entry by ID: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *mongoPriceEntryRepository) Save(ctx context.Context, entry *domain.PriceEntry) (*domain.PriceEntry, error) {
	doc := newPriceEntryDocument(entry)
	if doc.ID == "" {
		doc.ID = newDocumentID()
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("failed to save price entry: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *mongoPriceEntryRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete price entry: %w", err)
	}
	return nil
}
