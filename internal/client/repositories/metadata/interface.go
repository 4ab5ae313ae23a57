// Package metadata is the local key/value table the client persists its
// snapshots into. Keys are short names ("auth-storage", "app-storage",
// "snapshot-salt"); values are opaque blobs.
package metadata

import (
	"context"
)

// Repository is a flat key/value store.
type Repository interface {
	// Get returns the value for key, or common.ErrorNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error
}
