// Package kv is the local key/value table that backs every record
// collection, the session keys and the one-shot migration flags.
package kv

import (
	"context"
)

// Repository reads and writes opaque values by key.
//
// Get returns (nil, nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
