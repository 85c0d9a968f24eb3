package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/Dhreetiman/product-management/internal/model"
)

// document is the persisted collection layout: a single JSON object
// wrapping the ordered item sequence.
type document struct {
	Items []model.Item `json:"items"`
}

// FileStore implements Store backed by a single JSON document on disk.
// Every operation runs a full load-modify-save cycle; the mutex
// serializes writers so concurrent requests cannot lose updates.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore creates a FileStore for the given path. A missing backing
// file is initialized with an empty collection; an existing file is left
// untouched and read lazily per operation.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.save(&document{Items: []model.Item{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return s, nil
}

// load reads and parses the backing document. Read or parse failures are
// reported as ErrUnavailable.
func (s *FileStore) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &doc, nil
}

// save durably rewrites the backing document, fully replacing prior
// contents.
func (s *FileStore) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// List returns the full collection in insertion order.
func (s *FileStore) List(ctx context.Context) ([]model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list items: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	return doc.Items, nil
}

// Get retrieves an item by its ID.
func (s *FileStore) Get(ctx context.Context, id string) (*model.Item, error) {
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

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range doc.Items {
		if doc.Items[i].ItemID == id {
			item := doc.Items[i]
			return &item, nil
		}
	}

	return nil, ErrNotFound
}

// Create assigns an ID and creation timestamp, validates the assembled
// record, appends it to the collection and persists.
func (s *FileStore) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
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

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	doc.Items = append(doc.Items, newItem)

	if err := s.save(doc); err != nil {
		return nil, err
	}

	return &newItem, nil
}

// Update merges the patch onto the stored record, validates the merged
// record and persists the collection.
func (s *FileStore) Update(ctx context.Context, id string, patch model.Patch) (*model.Item, error) {
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

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range doc.Items {
		if doc.Items[i].ItemID != id {
			continue
		}

		merged := doc.Items[i]
		patch.Apply(&merged)

		if err := merged.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}

		doc.Items[i] = merged

		if err := s.save(doc); err != nil {
			return nil, err
		}

		return &merged, nil
	}

	return nil, ErrNotFound
}

// Delete removes an item from the collection by its ID. The collection
// is untouched when the ID does not match.
func (s *FileStore) Delete(ctx context.Context, id string) error {
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

	doc, err := s.load()
	if err != nil {
		return err
	}

	for i := range doc.Items {
		if doc.Items[i].ItemID != id {
			continue
		}

		doc.Items = append(doc.Items[:i], doc.Items[i+1:]...)

		return s.save(doc)
	}

	return ErrNotFound
}
