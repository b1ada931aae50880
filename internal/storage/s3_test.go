package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	err     error
	lastIn  *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestStore_Download(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"protected/src/seinfeld/1/1/0.mp4": "chunk-bytes"}}
	store := New(client, "generated-images")

	var buf bytes.Buffer
	n, err := store.Download(context.Background(), "protected/src/seinfeld/1/1/0.mp4", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("chunk-bytes")), n)
	assert.Equal(t, "chunk-bytes", buf.String())
	assert.Equal(t, "generated-images", *client.lastIn.Bucket)
}

func TestStore_DownloadNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"typed NoSuchKey", &types.NoSuchKey{}},
		{"generic api error", &smithy.GenericAPIError{Code: "NotFound", Message: "missing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(&fakeS3{err: tt.err}, "generated-images")
			_, err := store.Download(context.Background(), "missing.mp4", io.Discard)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_DownloadOtherError(t *testing.T) {
	store := New(&fakeS3{err: errors.New("connection reset")}, "generated-images")
	_, err := store.Download(context.Background(), "chunk.mp4", io.Discard)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestStore_DownloadToTemp(t *testing.T) {
	dir := t.TempDir()
	store := New(&fakeS3{objects: map[string]string{"a.mp4": "video"}}, "generated-images")

	path, err := store.DownloadToTemp(context.Background(), "a.mp4", dir, ".mp4")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".mp4"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "video", string(data))
}

func TestStore_DownloadToTempCleansUpOnFailure(t *testing.T) {
	dir := t.TempDir()
	store := New(&fakeS3{objects: map[string]string{}}, "generated-images")

	_, err := store.DownloadToTemp(context.Background(), "missing.mp4", dir, ".mp4")
	require.ErrorIs(t, err, ErrNotFound)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
