// Package storage defines the local key-value store the dashboard persists into.
package storage

import "context"

// Store is a small key-value store.
// Get returns (nil, nil) when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
