package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/meetbrief/backend/libs/errors"
	"github.com/meetbrief/backend/libs/ptr"
)

var sseAlgorithm = "AES256"

// S3 is a Store that uses AWS S3.
type S3 struct {
	s3 s3iface.S3API
}

// NewS3 returns a new Store that uses S3.
func NewS3(awsSession *session.Session) *S3 {
	return &S3{s3: s3.New(awsSession)}
}

// NewS3WithAPI returns a Store on an existing S3 API client.
func NewS3WithAPI(api s3iface.S3API) *S3 {
	return &S3{s3: api}
}

func (s *S3) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: ptr.String(bucket),
		Key:    ptr.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "storage: head s3://%s/%s", bucket, key)
	}
	return true, nil
}

func (s *S3) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: ptr.String(bucket),
		Key:    ptr.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(ErrNoObject, "s3://%s/%s", bucket, key)
		}
		return nil, errors.Wrapf(err, "storage: get s3://%s/%s", bucket, key)
	}
	defer obj.Body.Close()
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, obj.Body); err != nil {
		return nil, errors.Trace(err)
	}
	return buf.Bytes(), nil
}

func (s *S3) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/binary"
	}
	_, err := s.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:               ptr.String(bucket),
		Key:                  ptr.String(key),
		Body:                 bytes.NewReader(data),
		ContentLength:        ptr.Int64(int64(len(data))),
		ContentType:          ptr.String(contentType),
		ServerSideEncryption: &sseAlgorithm,
	})
	if err != nil {
		return errors.Wrapf(err, "storage: put s3://%s/%s", bucket, key)
	}
	return nil
}

func (s *S3) Download(ctx context.Context, bucket, key, localPath string) error {
	obj, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: ptr.String(bucket),
		Key:    ptr.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return errors.Wrapf(ErrNoObject, "s3://%s/%s", bucket, key)
		}
		return errors.Wrapf(err, "storage: download s3://%s/%s", bucket, key)
	}
	defer obj.Body.Close()
	f, err := os.Create(localPath)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	if _, err := io.Copy(f, obj.Body); err != nil {
		os.Remove(localPath) // cleanup on failure
		return errors.Trace(err)
	}
	return errors.Trace(f.Sync())
}

func isNotFound(err error) bool {
	var rf awserr.RequestFailure
	if errors.As(err, &rf) {
		if rf.StatusCode() == http.StatusNotFound {
			return true
		}
	}
	var ae awserr.Error
	if errors.As(err, &ae) {
		switch ae.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}

// IsAccessDenied reports whether the error is an S3 permission failure.
func IsAccessDenied(err error) bool {
	var ae awserr.Error
	return errors.As(err, &ae) && ae.Code() == "AccessDenied"
}
