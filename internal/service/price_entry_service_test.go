package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

// failingPriceEntryRepository fails every call
type failingPriceEntryRepository struct{}

func (failingPriceEntryRepository) Find(ctx context.Context, filter domain.PriceEntryFilter, sort domain.Sort) ([]*domain.PriceEntry, error) {
	return nil, errStoreDown
}

func (failingPriceEntryRepository) FindByID(ctx context.Context, id string) (*domain.PriceEntry, error) {
	return nil, errStoreDown
}

func (failingPriceEntryRepository) Save(ctx context.Context, entry *domain.PriceEntry) (*domain.PriceEntry, error) {
	return nil, errStoreDown
}

func (failingPriceEntryRepository) DeleteByID(ctx context.Context, id string) error {
	return errStoreDown
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedPrices(t *testing.T, svc PriceEntryService, entries ...domain.PriceEntry) []*domain.PriceEntry {
	t.Helper()
	created := make([]*domain.PriceEntry, 0, len(entries))
	for i := range entries {
		entry, err := svc.Create(context.Background(), &entries[i])
		require.NoError(t, err)
		created = append(created, entry)
	}
	return created
}

func TestPriceEntryService_CreateAndGet(t *testing.T) {
	svc := NewPriceEntryService(repository.NewMemoryPriceEntryRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.PriceEntry{
		ProductID: "P1", ProductCategory: "Dairy", Brand: "Acme", StoreName: "Central", Price: 2.5, Date: date(2024, 6, 1),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	found, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestPriceEntryService_GetByID_NotFound(t *testing.T) {
	svc := NewPriceEntryService(repository.NewMemoryPriceEntryRepository())

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrPriceEntryNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPriceEntryService_List(t *testing.T) {
	svc := NewPriceEntryService(repository.NewMemoryPriceEntryRepository())
	ctx := context.Background()
	seedPrices(t, svc,
		domain.PriceEntry{ProductID: "P1", Price: 3},
		domain.PriceEntry{ProductID: "P2", Price: 10},
		domain.PriceEntry{ProductID: "P1", Price: 7},
	)

	all, err := svc.List(ctx, PriceEntryListParams{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byProduct, err := svc.List(ctx, PriceEntryListParams{ProductID: "P1"})
	require.NoError(t, err)
	require.Len(t, byProduct, 2)
	for _, entry := range byProduct {
		assert.Equal(t, "P1", entry.ProductID)
	}

	ordered, err := svc.List(ctx, PriceEntryListParams{ProductID: "P1", OrderByValue: true})
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, 7.0, ordered[0].Price)
	assert.Equal(t, 3.0, ordered[1].Price)

	none, err := svc.List(ctx, PriceEntryListParams{ProductID: "UNKNOWN"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPriceEntryService_Update(t *testing.T) {
	svc := NewPriceEntryService(repository.NewMemoryPriceEntryRepository())
	ctx := context.Background()
	created := seedPrices(t, svc, domain.PriceEntry{ProductID: "P1", StoreName: "Central", Price: 3, Date: date(2024, 6, 1)})[0]

	existing, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	incoming := &domain.PriceEntry{ID: "ignored", ProductID: "P9", StoreName: "North", Price: 4.75, Date: date(2024, 6, 2)}
	updated, err := svc.Update(ctx, existing, incoming)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "P9", updated.ProductID)
	assert.Equal(t, "North", updated.StoreName)
	assert.Equal(t, 4.75, updated.Price)

	stored, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)

	_, err = svc.GetByID(ctx, "ignored")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPriceEntryService_Delete(t *testing.T) {
	svc := NewPriceEntryService(repository.NewMemoryPriceEntryRepository())
	ctx := context.Background()
	created := seedPrices(t, svc, domain.PriceEntry{ProductID: "P1", Price: 1})[0]

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err := svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// deleting an absent entry is not an error
	assert.NoError(t, svc.Delete(ctx, created.ID))

	assert.NoError(t, svc.Delete(ctx, "never-created"))
	_, err = svc.GetByID(ctx, "never-created")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPriceEntryService_GetPriceHistory(t *testing.T) {
	svc := NewPriceEntryService(repository.NewMemoryPriceEntryRepository())
	ctx := context.Background()
	seedPrices(t, svc,
		domain.PriceEntry{ProductID: "P1", ProductCategory: "Dairy", Brand: "Acme", StoreName: "Central", Price: 3, Date: date(2024, 6, 3)},
		domain.PriceEntry{ProductID: "P1", ProductCategory: "Dairy", Brand: "Acme", StoreName: "North", Price: 4, Date: date(2024, 6, 1)},
		domain.PriceEntry{ProductID: "P1", ProductCategory: "Dairy", Brand: "Acme", StoreName: "Central", Price: 2, Date: date(2024, 6, 2)},
		domain.PriceEntry{ProductID: "P2", ProductCategory: "Bakery", Brand: "Other", StoreName: "Central", Price: 9, Date: date(2024, 6, 1)},
	)

	history, err := svc.GetPriceHistory(ctx, PriceHistoryParams{ProductID: "P1", StoreName: "Central"})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, date(2024, 6, 2), history[0].Date)
	assert.Equal(t, 2.0, history[0].Price)
	assert.Equal(t, date(2024, 6, 3), history[1].Date)

	all, err := svc.GetPriceHistory(ctx, PriceHistoryParams{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	byCategory, err := svc.GetPriceHistory(ctx, PriceHistoryParams{ProductCategory: "Bakery"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "P2", byCategory[0].ProductID)
	assert.Equal(t, "Other", byCategory[0].Brand)
}

func TestPriceEntryService_WrapsStoreErrors(t *testing.T) {
	svc := NewPriceEntryService(failingPriceEntryRepository{})
	ctx := context.Background()

	_, err := svc.List(ctx, PriceEntryListParams{})
	assert.ErrorIs(t, err, errStoreDown)
	assert.Contains(t, err.Error(), "failed to list price entries")

	_, err = svc.GetByID(ctx, "x")
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Create(ctx, &domain.PriceEntry{})
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.Update(ctx, &domain.PriceEntry{ID: "x"}, &domain.PriceEntry{})
	assert.ErrorIs(t, err, errStoreDown)

	assert.ErrorIs(t, svc.Delete(ctx, "x"), errStoreDown)

	_, err = svc.GetPriceHistory(ctx, PriceHistoryParams{})
	assert.ErrorIs(t, err, errStoreDown)
}

// Listing with orderByValue never returns a higher price after a lower one
func TestProperty_OrderByValueIsDescending(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("prices are non-increasing", prop.ForAll(
		func(prices []float64) bool {
			svc := NewPriceEntryService(repository.NewMemoryPriceEntryRepository())
			ctx := context.Background()
			for _, price := range prices {
				if _, err := svc.Create(ctx, &domain.PriceEntry{ProductID: "P1", Price: price}); err != nil {
					return false
				}
			}

			entries, err := svc.List(ctx, PriceEntryListParams{OrderByValue: true})
			if err != nil || len(entries) != len(prices) {
				return false
			}
			for i := 1; i < len(entries); i++ {
				if entries[i].Price > entries[i-1].Price {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0, 10000)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Update keeps the stored identifier whatever the incoming entry carries
func TestProperty_UpdatePreservesIdentity(t *testing.T) {
	svc := NewPriceEntryService(repository.NewMemoryPriceEntryRepository())
	ctx := context.Background()
	created, err := svc.Create(ctx, &domain.PriceEntry{ProductID: "P1", Price: 1})
	require.NoError(t, err)

	properties := gopter.NewProperties(nil)

	properties.Property("identifier survives updates", prop.ForAll(
		func(incomingID, productID string, price float64) bool {
			existing, err := svc.GetByID(ctx, created.ID)
			if err != nil {
				return false
			}
			updated, err := svc.Update(ctx, existing, &domain.PriceEntry{ID: incomingID, ProductID: productID, Price: price})
			if err != nil {
				return false
			}
			return updated.ID == created.ID && updated.ProductID == productID && updated.Price == price
		},
		gen.Identifier(),
		gen.RegexMatch(`^[A-Z0-9]{1,20}$`),
		gen.Float64Range(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
