// Package store provides item collection storage interfaces and
// implementations.
package store

import (
	"context"
	"errors"

	"github.com/Dhreetiman/product-management/internal/model"
)

// Store errors.
var (
	ErrNotFound    = errors.New("item not found")
	ErrInvalidID   = errors.New("invalid item ID")
	ErrNilItem     = errors.New("item cannot be nil")
	ErrInvalidItem = errors.New("invalid item")
	ErrUnavailable = errors.New("item store unavailable")
)

// Store defines the interface for item collection operations. The
// collection is an ordered sequence: Create appends, and List returns
// items in insertion order.
type Store interface {
	// List returns the full collection in insertion order.
	List(ctx context.Context) ([]model.Item, error)

	// Get retrieves an item by its ID (exact string match).
	Get(ctx context.Context, id string) (*model.Item, error)

	// Create assigns an ID and creation timestamp to the item, validates
	// the assembled record, appends it and returns it.
	Create(ctx context.Context, item *model.Item) (*model.Item, error)

	// Update merges the patch onto the stored record, field by field,
	// validates the result, persists it and returns the merged record.
	Update(ctx context.Context, id string, patch model.Patch) (*model.Item, error)

	// Delete removes an item from the collection by its ID.
	Delete(ctx context.Context, id string) error
}
