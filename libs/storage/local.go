package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/meetbrief/backend/libs/errors"
)

// local is a store that uses the local filesystem, mapping each bucket to a
// directory under the root path.
type local struct {
	path string
}

// NewLocalStore initializes a new local file storage creating the path if necessary.
// WARNING: It is not safe to use this in production. There are no checks that files
// aren't read outside of the intended path. It should be safe if keys come from
// a trusted source.
func NewLocalStore(path string) (Store, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "storage: failed to make path %q absolute", path)
	}
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, errors.Wrapf(err, "storage: failed to create path %q", path)
	}
	return &local{path: path}, nil
}

func (s *local) pathFor(bucket, key string) (string, error) {
	full := filepath.Join(s.path, bucket, filepath.FromSlash(key))
	if !strings.HasPrefix(full, s.path) {
		return "", errors.Errorf("storage: invalid key %q", key)
	}
	return full, nil
}

func (s *local) Exists(ctx context.Context, bucket, key string) (bool, error) {
	full, err := s.pathFor(bucket, key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, errors.Trace(err)
	}
	return true, nil
}

func (s *local) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	full, err := s.pathFor(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNoObject, "path=%q", full)
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	return data, nil
}

func (s *local) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	full, err := s.pathFor(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0700); err != nil {
		return errors.Trace(err)
	}
	f, err := os.Create(full)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(full) // cleanup on failure
		return errors.Trace(err)
	}
	return errors.Trace(f.Sync())
}

func (s *local) Download(ctx context.Context, bucket, key, localPath string) error {
	full, err := s.pathFor(bucket, key)
	if err != nil {
		return err
	}
	src, err := os.Open(full)
	if os.IsNotExist(err) {
		return errors.Wrapf(ErrNoObject, "path=%q", full)
	} else if err != nil {
		return errors.Trace(err)
	}
	defer src.Close()
	dst, err := os.Create(localPath)
	if err != nil {
		return errors.Trace(err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(localPath)
		return errors.Trace(err)
	}
	return errors.Trace(dst.Sync())
}
