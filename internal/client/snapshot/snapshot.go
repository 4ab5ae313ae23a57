// Package snapshot persists whole store states as keyed blobs.
//
// A snapshot is a JSON envelope {"state": ..., "version": 0}. Stores read
// their snapshot once when they are built and write it back after every
// mutation.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/plaquekeeper/internal/common"
)

const (
	AuthKey = "auth-storage"
	AppKey  = "app-storage"

	// Version is the envelope version written by this build.
	Version = 0
)

var ErrNotFound = errors.New("snapshot not found")

// Store is a keyed blob sink.
type Store interface {
	// Load returns the blob saved under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type envelope[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// Encode wraps state in the versioned envelope.
func Encode[T any](state T) ([]byte, error) {
	return json.Marshal(envelope[T]{State: state, Version: Version})
}

// Decode unwraps an envelope written by Encode. Malformed input and unknown
// versions yield an error wrapping common.ErrSnapshotCorrupted.
func Decode[T any](data []byte) (T, error) {
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", common.ErrSnapshotCorrupted, err)
	}
	if env.Version != Version {
		var zero T
		return zero, fmt.Errorf("%w: unsupported version %d", common.ErrSnapshotCorrupted, env.Version)
	}
	return env.State, nil
}

// Read loads and decodes the snapshot under key. found is false when nothing
// was saved yet.
func Read[T any](ctx context.Context, s Store, key string) (state T, found bool, err error) {
	data, err := s.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return state, false, nil
	}
	if err != nil {
		return state, false, err
	}
	state, err = Decode[T](data)
	if err != nil {
		return state, false, err
	}
	return state, true, nil
}

// Write encodes state and saves it under key. Any failure wraps
// common.ErrPersist.
func Write[T any](ctx context.Context, s Store, key string, state T) error {
	data, err := Encode(state)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", common.ErrPersist, key, err)
	}
	if err := s.Save(ctx, key, data); err != nil {
		return fmt.Errorf("%w: save %s: %w", common.ErrPersist, key, err)
	}
	return nil
}
