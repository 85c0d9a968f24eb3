// Package model defines data structures used throughout the application.
package model

import (
	"encoding/json"
	"errors"
	"sort"
	"time"
)

// Validation errors for Item.
var (
	ErrNegativePrice    = errors.New("itemPrice cannot be negative")
	ErrInvalidCreatedAt = errors.New("createdAt must be an ISO-8601 date string")
)

// TimestampLayout is the wire format for createdAt values.
const TimestampLayout = time.RFC3339

// Item is the single persisted business entity: a priced, categorized,
// described record. ItemID and CreatedAt are assigned by the system on
// creation and never change afterwards.
type Item struct {
	ItemID          string  `json:"itemId"`
	ItemName        string  `json:"itemName"`
	ItemPrice       float64 `json:"itemPrice"`
	ItemCategory    string  `json:"itemCategory"`
	ItemDescription string  `json:"itemDescription"`
	CreatedAt       string  `json:"createdAt"`
}

// Validate checks the fully assembled record against the schema
// constraints. It runs after ID and timestamp injection, so a populated
// CreatedAt is expected to parse.
func (i *Item) Validate() error {
	if i.ItemPrice < 0 {
		return ErrNegativePrice
	}

	if i.CreatedAt != "" {
		if _, err := time.Parse(TimestampLayout, i.CreatedAt); err != nil {
			return ErrInvalidCreatedAt
		}
	}

	return nil
}

// NewTimestamp returns the current time formatted for CreatedAt.
func NewTimestamp() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// Patch is a partial item update. Nil fields were absent from the payload
// and leave the stored value untouched.
type Patch struct {
	ItemName        *string  `json:"itemName"`
	ItemPrice       *float64 `json:"itemPrice"`
	ItemCategory    *string  `json:"itemCategory"`
	ItemDescription *string  `json:"itemDescription"`
}

// Apply overwrites the fields present in the patch onto the item.
// ItemID and CreatedAt are not part of the patch and cannot change.
func (p *Patch) Apply(item *Item) {
	if p.ItemName != nil {
		item.ItemName = *p.ItemName
	}
	if p.ItemPrice != nil {
		item.ItemPrice = *p.ItemPrice
	}
	if p.ItemCategory != nil {
		item.ItemCategory = *p.ItemCategory
	}
	if p.ItemDescription != nil {
		item.ItemDescription = *p.ItemDescription
	}
}

// Complete reports whether every writable field is present and truthy,
// which is the create-time input contract. A zero price counts as missing.
func (p *Patch) Complete() bool {
	return p.ItemName != nil && *p.ItemName != "" &&
		p.ItemPrice != nil && *p.ItemPrice != 0 &&
		p.ItemCategory != nil && *p.ItemCategory != "" &&
		p.ItemDescription != nil && *p.ItemDescription != ""
}

// writableFields is the allow-list for create and update payloads.
var writableFields = map[string]bool{
	"itemName":        true,
	"itemPrice":       true,
	"itemCategory":    true,
	"itemDescription": true,
}

// DisallowedFields returns the payload keys outside the writable
// allow-list, sorted for deterministic error messages. System-assigned
// fields (itemId, createdAt) are rejected like any other extra key.
func DisallowedFields(payload map[string]json.RawMessage) []string {
	var extra []string
	for key := range payload {
		if !writableFields[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return extra
}

// Envelope is the uniform wrapper around every API response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// NewSuccessEnvelope creates a successful API response.
func NewSuccessEnvelope[T any](message string, data T) Envelope[T] {
	return Envelope[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewErrorEnvelope creates a failed API response with an empty data object.
func NewErrorEnvelope(message string) Envelope[struct{}] {
	return Envelope[struct{}]{
		Success: false,
		Message: message,
	}
}

// Item event types sent over the WebSocket feed.
const (
	EventItemCreated = "item_created"
	EventItemUpdated = "item_updated"
	EventItemDeleted = "item_deleted"
)

// ItemEvent is a lifecycle notification sent to WebSocket subscribers.
// Item is omitted for deletions.
type ItemEvent struct {
	Type      string    `json:"type"`
	ItemID    string    `json:"itemId"`
	Item      *Item     `json:"item,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewItemEvent creates an ItemEvent stamped with the current time.
func NewItemEvent(eventType, itemID string, item *Item) ItemEvent {
	return ItemEvent{
		Type:      eventType,
		ItemID:    itemID,
		Item:      item,
		Timestamp: time.Now().UTC(),
	}
}
