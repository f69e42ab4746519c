package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type processedFileRepository struct {
	db *sql.DB
}

// NewProcessedFileRepository creates a Postgres backed ProcessedFileRepository
func NewProcessedFileRepository(db *sql.DB) ProcessedFileRepository {
	return &processedFileRepository{db: db}
}

// Save records a processed file. File names are unique.
func (r *processedFileRepository) Save(ctx context.Context, file *domain.ProcessedFile) (*domain.ProcessedFile, error) {
	saved := *file
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	saved.ProcessedDate = domain.DateOf(saved.ProcessedDate)

	query := `
		INSERT INTO processed_files (id, file_name, processed_date)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, saved.ID, saved.FileName, saved.ProcessedDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrProcessedFileExists
		}
		return nil, fmt.Errorf("failed to save processed file: %w", err)
	}

	return &saved, nil
}

// ExistsByFileName reports whether a file with this name was already processed
func (r *processedFileRepository) ExistsByFileName(ctx context.Context, fileName string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM processed_files WHERE file_name = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, fileName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check processed file: %w", err)
	}

	return exists, nil
}

// List retrieves all processed files, oldest first
func (r *processedFileRepository) List(ctx context.Context) ([]*domain.ProcessedFile, error) {
	query := `
		SELECT id, file_name, processed_date
		FROM processed_files
		ORDER BY processed_date ASC, file_name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed files: %w", err)
	}
	defer rows.Close()

	files := []*domain.ProcessedFile{}
	for rows.Next() {
		file := &domain.ProcessedFile{}
		if err := rows.Scan(&file.ID, &file.FileName, &file.ProcessedDate); err != nil {
			return nil, fmt.Errorf("failed to scan processed file: %w", err)
		}
		file.ProcessedDate = domain.DateOf(file.ProcessedDate)
		files = append(files, file)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating processed files: %w", err)
	}

	return files, nil
}
