package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
)

type discountEntryRepository struct {
	db *sql.DB
}

// NewDiscountEntryRepository creates a Postgres backed DiscountEntryRepository
func NewDiscountEntryRepository(db *sql.DB) DiscountEntryRepository {
	return &discountEntryRepository{db: db}
}

// Find retrieves discount entries matching the filter
func (r *discountEntryRepository) Find(ctx context.Context, filter domain.DiscountEntryFilter, sort domain.Sort) ([]*domain.DiscountEntry, error) {
	where := &whereBuilder{}
	if filter.DateAfter != nil {
		where.add("date > $%d", domain.DateOf(*filter.DateAfter))
	}
	where.addIfSet("product_id", filter.ProductID)

	orderBy, err := orderByClause(sort)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, product_id, from_date, to_date, percentage_of_discount, store_name, date
		FROM discount_entries
		%s
		%s
	`, where.clause(), orderBy)

	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list discount entries: %w", err)
	}
	defer rows.Close()

	entries := []*domain.DiscountEntry{}
	for rows.Next() {
		entry, err := scanDiscountEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discount entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating discount entries: %w", err)
	}

	return entries, nil
}

// FindByID retrieves a discount entry by ID
func (r *discountEntryRepository) FindByID(ctx context.Context, id string) (*domain.DiscountEntry, error) {
	query := `
		SELECT id, product_id, from_date, to_date, percentage_of_discount, store_name, date
		FROM discount_entries
		WHERE id = $1
	`

	entry, err := scanDiscountEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDiscountEntryNotFound
		}
		return nil, fmt.Errorf("failed to find discount entry by ID: %w", err)
	}

	return entry, nil
}

// Save inserts the entry, assigning an ID when it has none, or overwrites the stored one
func (r *discountEntryRepository) Save(ctx context.Context, entry *domain.DiscountEntry) (*domain.DiscountEntry, error) {
	saved := *entry
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	saved.FromDate = domain.DateOf(saved.FromDate)
	saved.ToDate = domain.DateOf(saved.ToDate)
	saved.Date = domain.DateOf(saved.Date)

	query := `
		INSERT INTO discount_entries (id, product_id, from_date, to_date, percentage_of_discount, store_name, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET product_id = EXCLUDED.product_id, from_date = EXCLUDED.from_date,
		    to_date = EXCLUDED.to_date, percentage_of_discount = EXCLUDED.percentage_of_discount,
		    store_name = EXCLUDED.store_name, date = EXCLUDED.date
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		saved.ID,
		saved.ProductID,
		saved.FromDate,
		saved.ToDate,
		saved.PercentageOfDiscount,
		saved.StoreName,
		saved.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save discount entry: %w", err)
	}

	return &saved, nil
}

// DeleteByID removes a discount entry. Missing rows are not an error.
func (r *discountEntryRepository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM discount_entries WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete discount entry: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDiscountEntry(row rowScanner) (*domain.DiscountEntry, error) {
	entry := &domain.DiscountEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.ProductID,
		&entry.FromDate,
		&entry.ToDate,
		&entry.PercentageOfDiscount,
		&entry.StoreName,
		&entry.Date,
	)
	if err != nil {
		return nil, err
	}

	entry.FromDate = domain.DateOf(entry.FromDate)
	entry.ToDate = domain.DateOf(entry.ToDate)
	entry.Date = domain.DateOf(entry.Date)
	return entry, nil
}
