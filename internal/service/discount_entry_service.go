package service

import (
	"context"
	"errors"
	"fmt"

	"pricewatch/internal/domain"
	"pricewatch/internal/pkg/clock"
	"pricewatch/internal/repository"
)

// DiscountEntryService defines the interface for discount entry business logic
type DiscountEntryService interface {
	List(ctx context.Context, params DiscountEntryListParams) ([]*domain.DiscountEntry, error)
	GetByID(ctx context.Context, id string) (*domain.DiscountEntry, error)
	Create(ctx context.Context, entry *domain.DiscountEntry) (*domain.DiscountEntry, error)
	Update(ctx context.Context, existing, incoming *domain.DiscountEntry) (*domain.DiscountEntry, error)
	Delete(ctx context.Context, id string) error
}

type discountEntryService struct {
	repo  repository.DiscountEntryRepository
	clock clock.Clock
}

// NewDiscountEntryService creates a new instance of DiscountEntryService
func NewDiscountEntryService(repo repository.DiscountEntryRepository, clk clock.Clock) DiscountEntryService {
	return &discountEntryService{repo: repo, clock: clk}
}

// List applies the recency, product and ordering options in that precedence
func (s *discountEntryService) List(ctx context.Context, params DiscountEntryListParams) ([]*domain.DiscountEntry, error) {
	filter, sort := discountEntryQuery(params, s.clock.Now())

	entries, err := s.repo.Find(ctx, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list discount entries: %w", err)
	}
	return entries, nil
}

func (s *discountEntryService) GetByID(ctx context.Context, id string) (*domain.DiscountEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDiscountEntryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get discount entry: %w", err)
	}
	return entry, nil
}

func (s *discountEntryService) Create(ctx context.Context, entry *domain.DiscountEntry) (*domain.DiscountEntry, error) {
	created, err := s.repo.Save(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create discount entry: %w", err)
	}
	return created, nil
}

func (s *discountEntryService) Update(ctx context.Context, existing, incoming *domain.DiscountEntry) (*domain.DiscountEntry, error) {
	updated, err := s.repo.Save(ctx, domain.ApplyDiscountEntryUpdate(existing, incoming))
	if err != nil {
		return nil, fmt.Errorf("failed to update discount entry: %w", err)
	}
	return updated, nil
}

func (s *discountEntryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete discount entry: %w", err)
	}
	return nil
}
