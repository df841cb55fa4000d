// Package docstore adapts the authoritative document store. Documents are
// surfaced as raw maps so the replication mapper owns all shape tolerance in
// one place; every result is normalized here into a single typed shape
// regardless of what the driver returns.
package docstore

import (
	"context"
	"errors"
	"time"
)

// Collection names in the document store.
const (
	CollectionTasks        = "tasks"
	CollectionMedia        = "media"
	CollectionLocations    = "locations"
	CollectionRooms        = "rooms"
	CollectionTargets      = "targets"
	CollectionActions      = "actions"
	CollectionRoomTypes    = "roomTypes"
	CollectionTargetTypes  = "targetTypes"
	CollectionActionTypes  = "actionTypes"
	CollectionUserProfiles = "userProfiles"
)

var ErrNotFound = errors.New("document not found")

// Document is one raw, schema-flexible document.
type Document map[string]any

// ID returns the document's natural id, empty when absent.
func (d Document) ID() string {
	if id, ok := d["id"].(string); ok {
		return id
	}
	return ""
}

// ChangedAt returns the document's change timestamp, falling back to
// updatedAt then createdAt for documents written before changedAt existed.
func (d Document) ChangedAt() time.Time {
	for _, key := range []string{"changedAt", "updatedAt", "createdAt"} {
		if ts, ok := NormalizeTime(d[key]); ok {
			return ts
		}
	}
	return time.Time{}
}

type Store interface {
	// ChangedSince returns documents with changedAt strictly after the given
	// time, in ascending change-time order, capped at limit.
	ChangedSince(ctx context.Context, collection string, after time.Time, limit int) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Find returns all documents whose field equals value.
	Find(ctx context.Context, collection, field string, value any) ([]Document, error)
	IDs(ctx context.Context, collection string) ([]string, error)
	Insert(ctx context.Context, collection string, doc Document) error
	Update(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error
	Close(ctx context.Context) error
}
