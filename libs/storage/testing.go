package storage

import (
	"context"
	"os"
	"sync"

	"github.com/meetbrief/backend/libs/errors"
)

// TestStore is an in-memory Store for tests. Individual operations can be made
// to fail by registering an error for an op/bucket/key triple.
type TestStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	errs    map[string]error
	puts    int
}

// NewTestStore returns an empty in-memory store.
func NewTestStore() *TestStore {
	return &TestStore{
		objects: make(map[string][]byte),
		errs:    make(map[string]error),
	}
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}

// Seed places an object in the store without counting as a Put.
func (s *TestStore) Seed(bucket, key string, data []byte) {
	s.mu.Lock()
	s.objects[objectKey(bucket, key)] = data
	s.mu.Unlock()
}

// Fail makes the next matching operation ("exists", "get", "put", "download")
// return err.
func (s *TestStore) Fail(op, bucket, key string, err error) {
	s.mu.Lock()
	s.errs[op+":"+objectKey(bucket, key)] = err
	s.mu.Unlock()
}

// Object returns the stored bytes for bucket/key.
func (s *TestStore) Object(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[objectKey(bucket, key)]
	return data, ok
}

// PutCount returns the number of Put calls made.
func (s *TestStore) PutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func (s *TestStore) failure(op, bucket, key string) error {
	k := op + ":" + objectKey(bucket, key)
	if err, ok := s.errs[k]; ok {
		delete(s.errs, k)
		return err
	}
	return nil
}

func (s *TestStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("exists", bucket, key); err != nil {
		return false, err
	}
	_, ok := s.objects[objectKey(bucket, key)]
	return ok, nil
}

func (s *TestStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("get", bucket, key); err != nil {
		return nil, err
	}
	data, ok := s.objects[objectKey(bucket, key)]
	if !ok {
		return nil, errors.Wrapf(ErrNoObject, "s3://%s/%s", bucket, key)
	}
	return data, nil
}

func (s *TestStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("put", bucket, key); err != nil {
		return err
	}
	s.puts++
	s.objects[objectKey(bucket, key)] = data
	return nil
}

func (s *TestStore) Download(ctx context.Context, bucket, key, localPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("download", bucket, key); err != nil {
		return err
	}
	data, ok := s.objects[objectKey(bucket, key)]
	if !ok {
		return errors.Wrapf(ErrNoObject, "s3://%s/%s", bucket, key)
	}
	return os.WriteFile(localPath, data, 0600)
}
