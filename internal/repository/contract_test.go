package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"pricewatch/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The same behaviour is expected from every backend; each backend test calls these.

func day(offset int) time.Time {
	return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func testPriceEntryRepository(t *testing.T, repo PriceEntryRepository) {
	ctx := context.Background()

	seed := []*domain.PriceEntry{
		{ProductID: "ABC123", ProductCategory: "Dairy", Brand: "Acme", StoreName: "Store A", Price: 10.0, Date: day(0)},
		{ProductID: "ABC123", ProductCategory: "Dairy", Brand: "Acme", StoreName: "Store B", Price: 12.5, Date: day(1)},
		{ProductID: "XYZ9", ProductCategory: "Bakery", Brand: "Bread Co", StoreName: "Store A", Price: 3.2, Date: day(2)},
		{ProductID: "XYZ9", ProductCategory: "Bakery", Brand: "Other", StoreName: "Store A", Price: 4.0, Date: day(3)},
	}

	var saved []*domain.PriceEntry
	for _, entry := range seed {
		s, err := repo.Save(ctx, entry)
		require.NoError(t, err)
		require.NotEmpty(t, s.ID)
		saved = append(saved, s)
	}

	t.Run("find by id returns the saved entry", func(t *testing.T) {
		found, err := repo.FindByID(ctx, saved[0].ID)
		require.NoError(t, err)
		assert.Equal(t, saved[0], found)
	})

	t.Run("empty filter returns everything in insertion order", func(t *testing.T) {
		all, err := repo.Find(ctx, domain.PriceEntryFilter{}, domain.Unsorted)
		require.NoError(t, err)
		require.Len(t, all, len(seed))
		for i := range saved {
			assert.Equal(t, saved[i].ID, all[i].ID)
		}
	})

	t.Run("filter by product id", func(t *testing.T) {
		entries, err := repo.Find(ctx, domain.PriceEntryFilter{ProductID: "ABC123"}, domain.Unsorted)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, e := range entries {
			assert.Equal(t, "ABC123", e.ProductID)
		}
	})

	t.Run("conjunction of history filters", func(t *testing.T) {
		entries, err := repo.Find(ctx, domain.PriceEntryFilter{StoreName: "Store A", ProductCategory: "Bakery", Brand: "Other"}, domain.Unsorted)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, saved[3].ID, entries[0].ID)
	})

	t.Run("sort by price descending", func(t *testing.T) {
		entries, err := repo.Find(ctx, domain.PriceEntryFilter{}, domain.SortBy(domain.SortFieldPrice, domain.SortDesc))
		require.NoError(t, err)
		require.Len(t, entries, len(seed))
		for i := 1; i < len(entries); i++ {
			assert.GreaterOrEqual(t, entries[i-1].Price, entries[i].Price)
		}
	})

	t.Run("unsupported sort field is rejected", func(t *testing.T) {
		_, err := repo.Find(ctx, domain.PriceEntryFilter{}, domain.SortBy("name; DROP TABLE", domain.SortAsc))
		assert.Error(t, err)
	})

	t.Run("save with existing id overwrites", func(t *testing.T) {
		updated := *saved[2]
		updated.Price = 99
		_, err := repo.Save(ctx, &updated)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, saved[2].ID)
		require.NoError(t, err)
		assert.Equal(t, 99.0, found.Price)

		all, err := repo.Find(ctx, domain.PriceEntryFilter{}, domain.Unsorted)
		require.NoError(t, err)
		assert.Len(t, all, len(seed))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.DeleteByID(ctx, saved[1].ID))
		require.NoError(t, repo.DeleteByID(ctx, saved[1].ID))
		require.NoError(t, repo.DeleteByID(ctx, "never-created"))

		_, err := repo.FindByID(ctx, saved[1].ID)
		assert.True(t, errors.Is(err, ErrPriceEntryNotFound))
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func testDiscountEntryRepository(t *testing.T, repo DiscountEntryRepository) {
	ctx := context.Background()

	seed := []*domain.DiscountEntry{
		{ProductID: "ABC123", FromDate: day(0), ToDate: day(5), PercentageOfDiscount: 10, StoreName: "Store A", Date: day(0)},
		{ProductID: "ABC123", FromDate: day(1), ToDate: day(6), PercentageOfDiscount: 30, StoreName: "Store B", Date: day(2)},
		{ProductID: "XYZ9", FromDate: day(1), ToDate: day(3), PercentageOfDiscount: 20, StoreName: "Store A", Date: day(2)},
	}

	var saved []*domain.DiscountEntry
	for _, entry := range seed {
		s, err := repo.Save(ctx, entry)
		require.NoError(t, err)
		saved = append(saved, s)
	}

	t.Run("find by id returns the saved entry", func(t *testing.T) {
		found, err := repo.FindByID(ctx, saved[1].ID)
		require.NoError(t, err)
		assert.Equal(t, saved[1], found)
	})

	t.Run("date after is strict", func(t *testing.T) {
		after := day(0)
		entries, err := repo.Find(ctx, domain.DiscountEntryFilter{DateAfter: &after}, domain.Unsorted)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, e := range entries {
			assert.True(t, e.Date.After(after))
		}
	})

	t.Run("date after combined with product id", func(t *testing.T) {
		after := day(1)
		entries, err := repo.Find(ctx, domain.DiscountEntryFilter{DateAfter: &after, ProductID: "XYZ9"}, domain.Unsorted)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, saved[2].ID, entries[0].ID)
	})

	t.Run("sort by percentage descending", func(t *testing.T) {
		entries, err := repo.Find(ctx, domain.DiscountEntryFilter{}, domain.SortBy(domain.SortFieldPercentageOfDiscount, domain.SortDesc))
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, []float64{30, 20, 10}, []float64{
			entries[0].PercentageOfDiscount,
			entries[1].PercentageOfDiscount,
			entries[2].PercentageOfDiscount,
		})
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.DeleteByID(ctx, saved[0].ID))
		require.NoError(t, repo.DeleteByID(ctx, saved[0].ID))

		_, err := repo.FindByID(ctx, saved[0].ID)
		assert.True(t, errors.Is(err, ErrDiscountEntryNotFound))
	})
}

func testProcessedFileRepository(t *testing.T, repo ProcessedFileRepository) {
	ctx := context.Background()

	exists, err := repo.ExistsByFileName(ctx, "prices-2024-06-10.csv")
	require.NoError(t, err)
	assert.False(t, exists)

	saved, err := repo.Save(ctx, &domain.ProcessedFile{FileName: "prices-2024-06-10.csv", ProcessedDate: day(0)})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	exists, err = repo.ExistsByFileName(ctx, "prices-2024-06-10.csv")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.Save(ctx, &domain.ProcessedFile{FileName: "prices-2024-06-10.csv", ProcessedDate: day(1)})
	assert.ErrorIs(t, err, ErrProcessedFileExists)

	_, err = repo.Save(ctx, &domain.ProcessedFile{FileName: "discounts-2024-06-09.csv", ProcessedDate: day(-1)})
	require.NoError(t, err)

	files, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, day(-1), files[0].ProcessedDate)
}
