package testfixtures

import (
	"context"
	"sort"
	"sync"

	"github.com/example/item-validation/internal/application"
)

var _ application.ItemRepository = (*ItemStore)(nil)

// ItemStore is an in-memory application.ItemRepository for service and
// handler tests. Stored values are copied on the way in and out.
type ItemStore struct {
	mu    sync.RWMutex
	items map[int64]application.Item
	ids   *IDGenerator

	// Err, when set, is returned by every operation.
	Err error
}

// NewItemStore returns a store preloaded with items.
func NewItemStore(items ...application.Item) *ItemStore {
	s := &ItemStore{
		items: make(map[int64]application.Item),
		ids:   NewIDGenerator(0),
	}
	for _, item := range items {
		if item.ID == 0 {
			item.ID = s.ids.Next()
		}
		s.ids.Observe(item.ID)
		s.items[item.ID] = cloneItem(item)
	}
	return s
}

// FindAll returns every item ordered by ID.
func (s *ItemStore) FindAll(ctx context.Context) ([]application.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := make([]application.Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, cloneItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindByID returns the item with id or application.ErrNotFound.
func (s *ItemStore) FindByID(ctx context.Context, id int64) (application.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return application.Item{}, s.Err
	}

	item, ok := s.items[id]
	if !ok {
		return application.Item{}, application.ErrNotFound
	}
	return cloneItem(item), nil
}

// Save assigns the next ID and stores item.
func (s *ItemStore) Save(ctx context.Context, item application.Item) (application.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return application.Item{}, s.Err
	}

	item.ID = s.ids.Next()
	s.items[item.ID] = cloneItem(item)
	return cloneItem(item), nil
}

// Update replaces the item with id.
func (s *ItemStore) Update(ctx context.Context, id int64, item application.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	if _, ok := s.items[id]; !ok {
		return application.ErrNotFound
	}
	item.ID = id
	s.items[id] = cloneItem(item)
	return nil
}

// Len reports how many items are stored.
func (s *ItemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func cloneItem(item application.Item) application.Item {
	item.Price = cloneInt(item.Price)
	item.Quantity = cloneInt(item.Quantity)
	return item
}
