// Package storage is the key-value persistence port used by the cart. Values
// are opaque strings; the cart decides what goes in them.
package storage

import (
	"context"
	"errors"
)

type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
