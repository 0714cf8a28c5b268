package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a key that does not exist.
var ErrNotFound = errors.New("object not found")

// Bucket is a single object storage bucket.
type Bucket interface {
	// Ensure creates the bucket when it does not exist yet.
	Ensure(ctx context.Context) error
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Keys lists every key under prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, key string) error
}
