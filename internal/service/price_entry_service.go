package service

import (
	"context"
	"errors"
	"fmt"

	"pricewatch/internal/domain"
	"pricewatch/internal/repository"
)

// PriceEntryService defines the interface for price entry business logic
type PriceEntryService interface {
	List(ctx context.Context, params PriceEntryListParams) ([]*domain.PriceEntry, error)
	GetByID(ctx context.Context, id string) (*domain.PriceEntry, error)
	Create(ctx context.Context, entry *domain.PriceEntry) (*domain.PriceEntry, error)
	Update(ctx context.Context, existing, incoming *domain.PriceEntry) (*domain.PriceEntry, error)
	Delete(ctx context.Context, id string) error
	GetPriceHistory(ctx context.Context, params PriceHistoryParams) ([]*domain.PriceHistoryRecord, error)
}

type priceEntryService struct {
	repo repository.PriceEntryRepository
}

// NewPriceEntryService creates a new instance of PriceEntryService
func NewPriceEntryService(repo repository.PriceEntryRepository) PriceEntryService {
	return &priceEntryService{repo: repo}
}

// List returns price entries, optionally restricted to a product and ordered by price
func (s *priceEntryService) List(ctx context.Context, params PriceEntryListParams) ([]*domain.PriceEntry, error) {
	filter, sort := priceEntryQuery(params)

	entries, err := s.repo.Find(ctx, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list price entries: %w", err)
	}
	return entries, nil
}

// GetByID returns repository.ErrPriceEntryNotFound unchanged when the entry does not exist
func (s *priceEntryService) GetByID(ctx context.Context, id string) (*domain.PriceEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPriceEntryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get price entry: %w", err)
	}
	return entry, nil
}

func (s *priceEntryService) Create(ctx context.Context, entry *domain.PriceEntry) (*domain.PriceEntry, error) {
	created, err := s.repo.Save(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create price entry: %w", err)
	}
	return created, nil
}

// Update overwrites every mutable field of existing with incoming. existing must
// come from GetByID.
func (s *priceEntryService) Update(ctx context.Context, existing, incoming *domain.PriceEntry) (*domain.PriceEntry, error) {
	updated, err := s.repo.Save(ctx, domain.ApplyPriceEntryUpdate(existing, incoming))
	if err != nil {
		return nil, fmt.Errorf("failed to update price entry: %w", err)
	}
	return updated, nil
}

// Delete removes the entry if present
func (s *priceEntryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete price entry: %w", err)
	}
	return nil
}

// GetPriceHistory returns the history view filtered by every provided parameter.
// Without parameters the whole history is returned.
func (s *priceEntryService) GetPriceHistory(ctx context.Context, params PriceHistoryParams) ([]*domain.PriceHistoryRecord, error) {
	filter, sort := priceHistoryQuery(params)

	entries, err := s.repo.Find(ctx, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}

	history := make([]*domain.PriceHistoryRecord, 0, len(entries))
	for _, entry := range entries {
		history = append(history, entry.ToHistoryRecord())
	}
	return history, nil
}
