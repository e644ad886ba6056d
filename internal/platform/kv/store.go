// Package kv defines the persistence port the stores write through. The
// storage layout is a flat string-keyed byte store holding JSON documents,
// mirroring the durable key-value store the storefront treats as its
// poor-man's database.
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound signals that no value is stored under the requested key.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store is the persistence port shared by all repositories.
type Store interface {
	// Load returns the value stored under key, or ErrKeyNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error
	// Delete removes the key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
