package ports

import (
	"context"

	"seodash/domain/searchdata"
)

// MirrorKey is the fixed key the record collection is persisted under
const MirrorKey = "searchConsoleData"

// RecordMirror is the durable copy of the store's record collection.
// The in-memory store stays authoritative; the mirror is best effort.
type RecordMirror interface {
	// Save replaces the persisted collection
	Save(ctx context.Context, records []searchdata.Record) error
	// Load returns the persisted collection, or nil when nothing is stored
	Load(ctx context.Context) ([]searchdata.Record, error)
	// Delete removes the persisted collection
	Delete(ctx context.Context) error
}
