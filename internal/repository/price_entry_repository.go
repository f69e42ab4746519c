package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
)

type priceEntryRepository struct {
	db *sql.DB
}

// NewPriceEntryRepository creates a Postgres backed PriceEntryRepository
func NewPriceEntryRepository(db *sql.DB) PriceEntryRepository {
	return &priceEntryRepository{db: db}
}

// Find retrieves price entries matching every set filter field
func (r *priceEntryRepository) Find(ctx context.Context, filter domain.PriceEntryFilter, sort domain.Sort) ([]*domain.PriceEntry, error) {
	where := &whereBuilder{}
	where.addIfSet("product_id", filter.ProductID)
	where.addIfSet("store_name", filter.StoreName)
	where.addIfSet("product_category", filter.ProductCategory)
	where.addIfSet("brand", filter.Brand)

	orderBy, err := orderByClause(sort)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, product_id, product_category, brand, store_name, price, date
		FROM price_entries
		%s
		%s
	`, where.clause(), orderBy)

	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list price entries: %w", err)
	}
	defer rows.Close()

	entries := []*domain.PriceEntry{}
	for rows.Next() {
		entry := &domain.PriceEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.ProductID,
			&entry.ProductCategory,
			&entry.Brand,
			&entry.StoreName,
			&entry.Price,
			&entry.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price entry: %w", err)
		}
		entry.Date = domain.DateOf(entry.Date)
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price entries: %w", err)
	}

	return entries, nil
}

// FindByID retrieves a price entry by ID
func (r *priceEntryRepository) FindByID(ctx context.Context, id string) (*domain.PriceEntry, error) {
	query := `
		SELECT id, product_id, product_category, brand, store_name, price, date
		FROM price_entries
		WHERE id = $1
	`

	entry := &domain.PriceEntry{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.ProductID,
		&entry.ProductCategory,
		&entry.Brand,
		&entry.StoreName,
		&entry.Price,
		&entry.Date,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPriceEntryNotFound
		}
		return nil, fmt.Errorf("failed to find price entry by ID: %w", err)
	}

	entry.Date = domain.DateOf(entry.Date)
	return entry, nil
}

// Save inserts the entry, assigning an ID when it has none, or overwrites the stored one
func (r *priceEntryRepository) Save(ctx context.Context, entry *domain.PriceEntry) (*domain.PriceEntry, error) {
	saved := *entry
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	saved.Date = domain.DateOf(saved.Date)

	query := `
		INSERT INTO price_entries (id, product_id, product_category, brand, store_name, price, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET product_id = EXCLUDED.product_id, product_category = EXCLUDED.product_category,
		    brand = EXCLUDED.brand, store_name = EXCLUDED.store_name,
		    price = EXCLUDED.price, date = EXCLUDED.date
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		saved.ID,
		saved.ProductID,
		saved.ProductCategory,
		saved.Brand,
		saved.StoreName,
		saved.Price,
		saved.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save price entry: %w", err)
	}

	return &saved, nil
}

// DeleteByID removes a price entry. Missing rows are not an error.
func (r *priceEntryRepository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM price_entries WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete price entry: %w", err)
	}

	return nil
}
