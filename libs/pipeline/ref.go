// Package pipeline implements the content-keyed transcription cache and the
// orchestration that fills it: resolve a cache hit, or download the video,
// extract normalized audio, submit an asynchronous transcription job, poll it
// to completion, and store the resulting transcript under a deterministic key.
package pipeline

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/meetbrief/backend/libs/storage"
)

// MediaRef identifies a source video object in the blob store.
type MediaRef struct {
	Bucket string
	Key    string
}

// InvalidRefError is returned for references that cannot name exactly one
// object in the store. It is always produced before any network call.
type InvalidRefError struct {
	Ref    string
	Reason string
}

func (e *InvalidRefError) Error() string {
	return fmt.Sprintf("pipeline: invalid media reference %q: %s", e.Ref, e.Reason)
}

// ParseRef parses an s3://bucket/key style URI into a MediaRef.
func ParseRef(ref string) (MediaRef, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return MediaRef{}, &InvalidRefError{Ref: ref, Reason: err.Error()}
	}
	if u.Scheme != "s3" {
		return MediaRef{}, &InvalidRefError{Ref: ref, Reason: "scheme must be s3"}
	}
	if u.Host == "" {
		return MediaRef{}, &InvalidRefError{Ref: ref, Reason: "missing bucket"}
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return MediaRef{}, &InvalidRefError{Ref: ref, Reason: "missing key"}
	}
	return MediaRef{Bucket: u.Host, Key: key}, nil
}

// BaseName returns the final path segment of the key with its extension
// stripped. All derived cache keys are built from it, so two videos sharing a
// basename alias to the same cache entry even across buckets.
func (r MediaRef) BaseName() string {
	name := path.Base(r.Key)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

// URI returns the canonical s3 URI for the reference.
func (r MediaRef) URI() string {
	return storage.URI(r.Bucket, r.Key)
}
