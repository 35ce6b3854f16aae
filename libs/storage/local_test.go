package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/meetbrief/backend/libs/errors"
	"github.com/meetbrief/backend/libs/test"
)

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	test.OK(t, err)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "media", "video/demo.mp4")
	test.OK(t, err)
	test.Equals(t, false, ok)

	_, err = store.Get(ctx, "media", "video/demo.mp4")
	test.Assert(t, errors.Is(err, ErrNoObject), "expected ErrNoObject got %+v", err)

	data := []byte("not really a video")
	test.OK(t, store.Put(ctx, "media", "video/demo.mp4", data, "video/mp4"))

	ok, err = store.Exists(ctx, "media", "video/demo.mp4")
	test.OK(t, err)
	test.Equals(t, true, ok)

	out, err := store.Get(ctx, "media", "video/demo.mp4")
	test.OK(t, err)
	test.Equals(t, data, out)

	localPath := filepath.Join(t.TempDir(), "demo.mp4")
	test.OK(t, store.Download(ctx, "media", "video/demo.mp4", localPath))
	out, err = os.ReadFile(localPath)
	test.OK(t, err)
	test.Equals(t, data, out)

	err = store.Download(ctx, "media", "video/missing.mp4", localPath)
	test.Assert(t, errors.Is(err, ErrNoObject), "expected ErrNoObject got %+v", err)
}
