// Package wardrobe provides an in-memory WardrobeRepository. The
// persistence schema proper lives outside this service; this store keeps
// the use cases runnable and testable without it.
package wardrobe

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stylistai/backend/internal/domain"
)

// Compile-time check: MemoryRepository implements domain.WardrobeRepository.
var _ domain.WardrobeRepository = (*MemoryRepository)(nil)

// MemoryRepository is a thread-safe in-memory wardrobe store.
type MemoryRepository struct {
	mutex    sync.RWMutex
	items    map[string]domain.ClothingItem
	analyses map[string][]domain.Analysis // keyed by item ID; newest last
	byUser   map[string][]domain.Analysis
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items:    make(map[string]domain.ClothingItem),
		analyses: make(map[string][]domain.Analysis),
		byUser:   make(map[string][]domain.Analysis),
	}
}

// GetItem returns the item when it exists and belongs to the user.
func (r *MemoryRepository) GetItem(ctx context.Context, itemID, userID string) (*domain.ClothingItem, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	item, ok := r.items[itemID]
	if !ok || item.UserID != userID {
		return nil, domain.ErrItemNotFound
	}
	found := item
	return &found, nil
}

// SaveItem stores a new item, assigning an ID when absent.
func (r *MemoryRepository) SaveItem(ctx context.Context, item *domain.ClothingItem) error {
	if item == nil {
		return domain.ErrInvalidRequest
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	r.items[item.ID] = *item
	return nil
}

// UpdateItem overwrites an existing item.
func (r *MemoryRepository) UpdateItem(ctx context.Context, item *domain.ClothingItem) error {
	if item == nil || item.ID == "" {
		return domain.ErrInvalidRequest
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	r.items[item.ID] = *item
	return nil
}

// ListItems returns the user's items, newest first.
func (r *MemoryRepository) ListItems(ctx context.Context, userID string, offset, limit int) ([]domain.ClothingItem, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var items []domain.ClothingItem
	for _, item := range r.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return paginate(items, offset, limit), nil
}

// LatestAnalysis returns the newest analysis for an item, or nil.
func (r *MemoryRepository) LatestAnalysis(ctx context.Context, itemID string) (*domain.Analysis, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	records := r.analyses[itemID]
	if len(records) == 0 {
		return nil, nil
	}
	latest := records[len(records)-1]
	return &latest, nil
}

// SaveAnalysis stores an analysis record.
func (r *MemoryRepository) SaveAnalysis(ctx context.Context, analysis *domain.Analysis) error {
	if analysis == nil {
		return domain.ErrInvalidRequest
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if analysis.ID == "" {
		analysis.ID = uuid.NewString()
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now()
	}
	if analysis.ItemID != "" {
		r.analyses[analysis.ItemID] = append(r.analyses[analysis.ItemID], *analysis)
	}
	r.byUser[analysis.UserID] = append(r.byUser[analysis.UserID], *analysis)
	return nil
}

// DeleteAnalyses removes every analysis record for an item.
func (r *MemoryRepository) DeleteAnalyses(ctx context.Context, itemID string) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	records := r.analyses[itemID]
	delete(r.analyses, itemID)

	for userID, list := range r.byUser {
		kept := list[:0]
		for _, a := range list {
			if a.ItemID != itemID {
				kept = append(kept, a)
			}
		}
		r.byUser[userID] = kept
	}
	return len(records), nil
}

// ListAnalyses returns the user's analysis history, newest first.
func (r *MemoryRepository) ListAnalyses(ctx context.Context, userID string, offset, limit int) ([]domain.Analysis, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	records := append([]domain.Analysis(nil), r.byUser[userID]...)
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return paginate(records, offset, limit), nil
}

func paginate[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
