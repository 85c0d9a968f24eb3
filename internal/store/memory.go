package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Dhreetiman/product-management/internal/model"
)

// MemoryStore implements Store with an in-memory ordered collection. It
// mirrors FileStore semantics without durability and is used by tests
// and the "memory" backend.
type MemoryStore struct {
	mu    sync.RWMutex
	items []model.Item
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: []model.Item{},
	}
}

// List returns the full collection in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list items: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.Item, len(s.items))
	copy(items, s.items)

	return items, nil
}

// Get retrieves an item by its ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get item: %w", ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.items {
		if s.items[i].ItemID == id {
			item := s.items[i]
			return &item, nil
		}
	}

	return nil, ErrNotFound
}

// Create assigns an ID and creation timestamp, validates the assembled
// record and appends it to the collection.
func (s *MemoryStore) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create item: %w", ctx.Err())
	default:
	}

	if item == nil {
		return nil, ErrNilItem
	}

	newItem := model.Item{
		ItemID:          uuid.New().String(),
		ItemName:        item.ItemName,
		ItemPrice:       item.ItemPrice,
		ItemCategory:    item.ItemCategory,
		ItemDescription: item.ItemDescription,
		CreatedAt:       model.NewTimestamp(),
	}

	if err := newItem.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, newItem)

	return &newItem, nil
}

// Update merges the patch onto the stored record and validates the
// merged record before storing it.
func (s *MemoryStore) Update(ctx context.Context, id string, patch model.Patch) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("update item: %w", ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ItemID != id {
			continue
		}

		merged := s.items[i]
		patch.Apply(&merged)

		if err := merged.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}

		s.items[i] = merged

		return &merged, nil
	}

	return nil, ErrNotFound
}

// Delete removes an item from the collection by its ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("delete item: %w", ctx.Err())
	default:
	}

	if id == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ItemID != id {
			continue
		}

		s.items = append(s.items[:i], s.items[i+1:]...)

		return nil
	}

	return ErrNotFound
}
