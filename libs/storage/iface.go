// Package storage provides access to durable key-value object stores.
package storage

import (
	"context"
	"fmt"

	"github.com/meetbrief/backend/libs/errors"
)

// ErrNoObject is returned when the requested object does not exist. Absence is
// a distinct condition from other store failures and callers may rely on it,
// e.g. to treat it as a cache miss.
var ErrNoObject = errors.New("storage: no object")

// Store is a durable key-value object store.
type Store interface {
	// Exists reports whether the object exists without reading it.
	Exists(ctx context.Context, bucket, key string) (bool, error)
	// Get reads the full object. Returns ErrNoObject if it does not exist.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// Put writes the full object, overwriting any previous content.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	// Download copies the object to a local file path.
	Download(ctx context.Context, bucket, key, localPath string) error
}

// URI returns the canonical s3 style URI for an object.
func URI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}
