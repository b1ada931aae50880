// Package storage fetches source video chunks from S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// GetObjectAPI is the subset of the S3 client the store needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store reads objects from a single bucket.
type Store struct {
	client GetObjectAPI
	bucket string
}

// New creates a Store for bucket.
func New(client GetObjectAPI, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// NewFromConfig builds a Store backed by a real S3 client.
func NewFromConfig(cfg aws.Config, bucket string) *Store {
	return New(s3.NewFromConfig(cfg), bucket)
}

// Download streams the object at key into dst and returns the bytes copied.
func (s *Store) Download(ctx context.Context, key string, dst io.Writer) (int64, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, ErrNotFound)
		}
		return 0, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	n, err := io.Copy(dst, out.Body)
	if err != nil {
		return n, fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
	}
	return n, nil
}

// DownloadToTemp writes the object at key to a new file in dir and returns
// its path. The caller owns the file. ext is appended to the generated name.
func (s *Store) DownloadToTemp(ctx context.Context, key, dir, ext string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("video-%s%s", uuid.NewString(), ext))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := s.Download(ctx, key, f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
