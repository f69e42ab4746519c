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

type discountEntryDocument struct {
	ID                   string    `bson:"_id"`
	ProductID            string    `bson:"productId"`
	FromDate             time.Time `bson:"fromDate"`
	ToDate               time.Time `bson:"toDate"`
	PercentageOfDiscount float64   `bson:"percentageOfDiscount"`
	StoreName            string    `bson:"storeName"`
	Date                 time.Time `bson:"date"`
}

func newDiscountEntryDocument(e *domain.DiscountEntry) discountEntryDocument {
	return discountEntryDocument{
		ID:                   e.ID,
		ProductID:            e.ProductID,
		FromDate:             domain.DateOf(e.FromDate),
		ToDate:               domain.DateOf(e.ToDate),
		PercentageOfDiscount: e.PercentageOfDiscount,
		StoreName:            e.StoreName,
		Date:                 domain.DateOf(e.Date),
	}
}

func (d discountEntryDocument) toDomain() *domain.DiscountEntry {
	return &domain.DiscountEntry{
		ID:                   d.ID,
		ProductID:            d.ProductID,
		FromDate:             domain.DateOf(d.FromDate),
		ToDate:               domain.DateOf(d.ToDate),
		PercentageOfDiscount: d.PercentageOfDiscount,
		StoreName:            d.StoreName,
		Date:                 domain.DateOf(d.Date),
	}
}

type mongoDiscountEntryRepository struct {
	collection *mongo.Collection
}

// NewMongoDiscountEntryRepository creates a MongoDB backed DiscountEntryRepository
func NewMongoDiscountEntryRepository(db *mongo.Database) DiscountEntryRepository {
	return &mongoDiscountEntryRepository{collection: db.Collection(DiscountEntriesCollection)}
}

func discountEntryQuery(filter domain.DiscountEntryFilter) bson.M {
	query := bson.M{}
	if filter.DateAfter != nil {
		query["date"] = bson.M{"$gt": domain.DateOf(*filter.DateAfter)}
	}
	if filter.ProductID != "" {
		query["productId"] = filter.ProductID
	}
	return query
}

func (r *mongoDiscountEntryRepository) Find(ctx context.Context, filter domain.DiscountEntryFilter, sort domain.Sort) ([]*domain.DiscountEntry, error) {
	opts, err := findOptions(sort)
	if err != nil {
		return nil, err
	}

	cursor, err := r.collection.Find(ctx, discountEntryQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list discount entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []discountEntryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode discount entries: %w", err)
	}

	entries := make([]*domain.DiscountEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, doc.toDomain())
	}

	return entries, nil
}

func (r *mongoDiscountEntryRepository) FindByID(ctx context.Context, id string) (*domain.DiscountEntry, error) {
	var doc discountEntryDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDiscountEntryNotFound
		}
		return nil, fmt.Errorf("failed to find discount entry by ID: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *mongoDiscountEntryRepository) Save(ctx context.Context, entry *domain.DiscountEntry) (*domain.DiscountEntry, error) {
	doc := newDiscountEntryDocument(entry)
	if doc.ID == "" {
		doc.ID = newDocumentID()
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("failed to save discount entry: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *mongoDiscountEntryRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete discount entry: %w", err)
	}
	return nil
}
