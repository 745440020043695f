// Package storage holds binary objects such as company logos outside the
// document store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("object not found")

type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns ErrNotFound for unknown keys. The caller closes Body.
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// RandomKey returns prefix/yyyy/m/d/uuid.
func RandomKey(prefix string, now time.Time) string {
	return fmt.Sprintf("%s/%d/%d/%d/%v", prefix, now.Year(), now.Month(), now.Day(), uuid.New())
}
