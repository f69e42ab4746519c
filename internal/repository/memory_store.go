package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
)

// NewMemoryStores returns in-process repositories. Data lives until the process exits.
func NewMemoryStores() *Stores {
	return &Stores{
		PriceEntries:    NewMemoryPriceEntryRepository(),
		DiscountEntries: NewMemoryDiscountEntryRepository(),
		ProcessedFiles:  NewMemoryProcessedFileRepository(),
		Ping:            func(context.Context) error { return nil },
		Close:           func(context.Context) error { return nil },
	}
}

// orderedMap keeps insertion order, which is the natural order of the memory store
type orderedMap[T any] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
}

func newOrderedMap[T any]() *orderedMap[T] {
	return &orderedMap[T]{items: make(map[string]T)}
}

func (m *orderedMap[T]) get(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	return item, ok
}

func (m *orderedMap[T]) put(id string, item T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[id]; !exists {
		m.order = append(m.order, id)
	}
	m.items[id] = item
}

func (m *orderedMap[T]) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[id]; !exists {
		return
	}
	delete(m.items, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *orderedMap[T]) values(match func(T) bool) []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []T{}
	for _, id := range m.order {
		if item := m.items[id]; match(item) {
			result = append(result, item)
		}
	}
	return result
}

func sortByKey[T any](items []T, s domain.Sort, keys map[string]func(T) float64) error {
	if s.IsUnsorted() {
		return nil
	}
	key, ok := keys[s.Field]
	if !ok {
		return fmt.Errorf("unsupported sort field %q", s.Field)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if s.Direction == domain.SortDesc {
			return key(items[i]) > key(items[j])
		}
		return key(items[i]) < key(items[j])
	})
	return nil
}

type memoryPriceEntryRepository struct {
	entries *orderedMap[domain.PriceEntry]
}

// NewMemoryPriceEntryRepository creates an in-memory PriceEntryRepository
func NewMemoryPriceEntryRepository() PriceEntryRepository {
	return &memoryPriceEntryRepository{entries: newOrderedMap[domain.PriceEntry]()}
}

var priceEntrySortKeys = map[string]func(*domain.PriceEntry) float64{
	domain.SortFieldPrice: func(e *domain.PriceEntry) float64 { return e.Price },
	domain.SortFieldDate:  func(e *domain.PriceEntry) float64 { return float64(e.Date.Unix()) },
}

func (r *memoryPriceEntryRepository) Find(ctx context.Context, filter domain.PriceEntryFilter, s domain.Sort) ([]*domain.PriceEntry, error) {
	matched := r.entries.values(func(e domain.PriceEntry) bool { return filter.Matches(&e) })

	entries := make([]*domain.PriceEntry, 0, len(matched))
	for i := range matched {
		entries = append(entries, &matched[i])
	}

	if err := sortByKey(entries, s, priceEntrySortKeys); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *memoryPriceEntryRepository) FindByID(ctx context.Context, id string) (*domain.PriceEntry, error) {
	entry, ok := r.entries.get(id)
	if !ok {
		return nil, ErrPriceEntryNotFound
	}
	return &entry, nil
}

func (r *memoryPriceEntryRepository) Save(ctx context.Context, entry *domain.PriceEntry) (*domain.PriceEntry, error) {
	saved := *entry
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	saved.Date = domain.DateOf(saved.Date)

	r.entries.put(saved.ID, saved)
	return &saved, nil
}

func (r *memoryPriceEntryRepository) DeleteByID(ctx context.Context, id string) error {
	r.entries.remove(id)
	return nil
}

type memoryDiscountEntryRepository struct {
	entries *orderedMap[domain.DiscountEntry]
}

// NewMemoryDiscountEntryRepository creates an in-memory DiscountEntryRepository
func NewMemoryDiscountEntryRepository() DiscountEntryRepository {
	return &memoryDiscountEntryRepository{entries: newOrderedMap[domain.DiscountEntry]()}
}

var discountEntrySortKeys = map[string]func(*domain.DiscountEntry) float64{
	domain.SortFieldPercentageOfDiscount: func(e *domain.DiscountEntry) float64 { return e.PercentageOfDiscount },
	domain.SortFieldDate:                 func(e *domain.DiscountEntry) float64 { return float64(e.Date.Unix()) },
}

func (r *memoryDiscountEntryRepository) Find(ctx context.Context, filter domain.DiscountEntryFilter, s domain.Sort) ([]*domain.DiscountEntry, error) {
	matched := r.entries.values(func(e domain.DiscountEntry) bool { return filter.Matches(&e) })

	entries := make([]*domain.DiscountEntry, 0, len(matched))
	for i := range matched {
		entries = append(entries, &matched[i])
	}

	if err := sortByKey(entries, s, discountEntrySortKeys); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *memoryDiscountEntryRepository) FindByID(ctx context.Context, id string) (*domain.DiscountEntry, error) {
	entry, ok := r.entries.get(id)
	if !ok {
		return nil, ErrDiscountEntryNotFound
	}
	return &entry, nil
}

func (r *memoryDiscountEntryRepository) Save(ctx context.Context, entry *domain.DiscountEntry) (*domain.DiscountEntry, error) {
	saved := *entry
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	saved.FromDate = domain.DateOf(saved.FromDate)
	saved.ToDate = domain.DateOf(saved.ToDate)
	saved.Date = domain.DateOf(saved.Date)

	r.entries.put(saved.ID, saved)
	return &saved, nil
}

func (r *memoryDiscountEntryRepository) DeleteByID(ctx context.Context, id string) error {
	r.entries.remove(id)
	return nil
}

type memoryProcessedFileRepository struct {
	mu    sync.Mutex
	files []domain.ProcessedFile
}

// NewMemoryProcessedFileRepository creates an in-memory ProcessedFileRepository
func NewMemoryProcessedFileRepository() ProcessedFileRepository {
	return &memoryProcessedFileRepository{}
}

func (r *memoryProcessedFileRepository) Save(ctx context.Context, file *domain.ProcessedFile) (*domain.ProcessedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.files {
		if existing.FileName == file.FileName {
			return nil, ErrProcessedFileExists
		}
	}

	saved := *file
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	saved.ProcessedDate = domain.DateOf(saved.ProcessedDate)
	r.files = append(r.files, saved)

	return &saved, nil
}

func (r *memoryProcessedFileRepository) ExistsByFileName(ctx context.Context, fileName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.files {
		if existing.FileName == fileName {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryProcessedFileRepository) List(ctx context.Context) ([]*domain.ProcessedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	files := make([]*domain.ProcessedFile, 0, len(r.files))
	for i := range r.files {
		file := r.files[i]
		files = append(files, &file)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ProcessedDate.Equal(files[j].ProcessedDate) {
			return files[i].ProcessedDate.Before(files[j].ProcessedDate)
		}
		return files[i].FileName < files[j].FileName
	})
	return files, nil
}
