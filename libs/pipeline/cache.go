package pipeline

import (
	"context"

	"github.com/meetbrief/backend/libs/errors"
	"github.com/meetbrief/backend/libs/storage"
)

// Cache maps a video reference to its cached transcript text. It owns the
// hit/miss decision: absence of the transcript object is a miss, every other
// store failure propagates. Treating a permission or transient error as a
// miss would trigger a redundant, costly re-transcription.
type Cache struct {
	store storage.Store
}

// NewCache returns a Cache backed by store.
func NewCache(store storage.Store) *Cache {
	return &Cache{store: store}
}

// Lookup returns the cached transcript for ref if one exists.
func (c *Cache) Lookup(ctx context.Context, ref MediaRef) (string, bool, error) {
	key := TranscriptKey(ref.BaseName())
	ok, err := c.store.Exists(ctx, ref.Bucket, key)
	if err != nil {
		return "", false, errors.Trace(err)
	}
	if !ok {
		return "", false, nil
	}
	data, err := c.store.Get(ctx, ref.Bucket, key)
	if err != nil {
		if errors.Is(err, storage.ErrNoObject) {
			// Deleted between the existence check and the read.
			return "", false, nil
		}
		return "", false, errors.Trace(err)
	}
	return string(data), true, nil
}

// Store writes the transcript text verbatim under the transcript key.
// Concurrent stores for the same reference are not arbitrated; last writer
// wins, which is safe because both wrote the same content.
func (c *Cache) Store(ctx context.Context, ref MediaRef, text string) error {
	return errors.Trace(c.store.Put(ctx, ref.Bucket, TranscriptKey(ref.BaseName()), []byte(text), "text/plain"))
}
