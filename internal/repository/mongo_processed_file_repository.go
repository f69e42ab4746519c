package repository

import (
	"context"
	"fmt"
	"time"

	"pricewatch/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type processedFileDocument struct {
	ID            string    `bson:"_id"`
	FileName      string    `bson:"fileName"`
	ProcessedDate time.Time `bson:"processedDate"`
}

type mongoProcessedFileRepository struct {
	collection *mongo.Collection
}

// NewMongoProcessedFileRepository creates a MongoDB backed ProcessedFileRepository.
// Uniqueness of fileName relies on the index created by EnsureMongoIndexes.
func NewMongoProcessedFileRepository(db *mongo.Database) ProcessedFileRepository {
	return &mongoProcessedFileRepository{collection: db.Collection(ProcessedFilesCollection)}
}

func (r *mongoProcessedFileRepository) Save(ctx context.Context, file *domain.ProcessedFile) (*domain.ProcessedFile, error) {
	doc := processedFileDocument{
		ID:            file.ID,
		FileName:      file.FileName,
		ProcessedDate: domain.DateOf(file.ProcessedDate),
	}
	if doc.ID == "" {
		doc.ID = newDocumentID()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrProcessedFileExists
		}
		return nil, fmt.Errorf("failed to save processed file: %w", err)
	}

	return &domain.ProcessedFile{ID: doc.ID, FileName: doc.FileName, ProcessedDate: doc.ProcessedDate}, nil
}

func (r *mongoProcessedFileRepository) ExistsByFileName(ctx context.Context, fileName string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"fileName": fileName}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check processed file: %w", err)
	}
	return count > 0, nil
}

func (r *mongoProcessedFileRepository) List(ctx context.Context) ([]*domain.ProcessedFile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "processedDate", Value: 1}, {Key: "fileName", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed files: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []processedFileDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode processed files: %w", err)
	}

	files := make([]*domain.ProcessedFile, 0, len(docs))
	for _, doc := range docs {
		files = append(files, &domain.ProcessedFile{
			ID:            doc.ID,
			FileName:      doc.FileName,
			ProcessedDate: domain.DateOf(doc.ProcessedDate),
		})
	}

	return files, nil
}
