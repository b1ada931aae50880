package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	args := Args("/tmp/video.mp4", 1.1, "/tmp/frame.jpg")
	assert.Equal(t, []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", "/tmp/video.mp4",
		"-ss", "1.1",
		"-vframes", "1",
		"-vf", "scale=iw*sar:ih,setsar=1",
		"-c:v", "mjpeg",
		"-f", "image2",
		"/tmp/frame.jpg",
	}, args)
}

func TestNew_DefaultBinary(t *testing.T) {
	assert.Equal(t, "ffmpeg", New("  ").Binary())
	assert.Equal(t, "/opt/bin/ffmpeg", New("/opt/bin/ffmpeg").Binary())
}

func TestExtractFrame(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "frame.jpg")

	var gotName string
	var gotArgs []string
	e := New("ffmpeg")
	e.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, os.WriteFile(output, []byte{0xFF, 0xD8, 0xFF}, 0o600)
	}

	require.NoError(t, e.ExtractFrame(context.Background(), "/tmp/in.mp4", 24.9, output))
	assert.Equal(t, "ffmpeg", gotName)
	assert.Equal(t, Args("/tmp/in.mp4", 24.9, output), gotArgs)
}

func TestExtractFrame_Failures(t *testing.T) {
	dir := t.TempDir()

	t.Run("process failure carries output", func(t *testing.T) {
		e := New("ffmpeg")
		e.run = func(context.Context, string, ...string) ([]byte, error) {
			return []byte("  moov atom not found\n"), errors.New("exit status 1")
		}
		err := e.ExtractFrame(context.Background(), "/tmp/in.mp4", 0, filepath.Join(dir, "a.jpg"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "moov atom not found")
	})

	t.Run("missing output", func(t *testing.T) {
		e := New("ffmpeg")
		e.run = func(context.Context, string, ...string) ([]byte, error) { return nil, nil }
		err := e.ExtractFrame(context.Background(), "/tmp/in.mp4", 0, filepath.Join(dir, "b.jpg"))
		assert.ErrorContains(t, err, "no output")
	})

	t.Run("empty output", func(t *testing.T) {
		output := filepath.Join(dir, "c.jpg")
		e := New("ffmpeg")
		e.run = func(context.Context, string, ...string) ([]byte, error) {
			return nil, os.WriteFile(output, nil, 0o600)
		}
		err := e.ExtractFrame(context.Background(), "/tmp/in.mp4", 30, output)
		assert.ErrorContains(t, err, "empty output at offset 30")
	})

	t.Run("invalid arguments", func(t *testing.T) {
		e := New("ffmpeg")
		assert.Error(t, e.ExtractFrame(context.Background(), "", 0, "out.jpg"))
		assert.Error(t, e.ExtractFrame(context.Background(), "in.mp4", 0, ""))
		assert.Error(t, e.ExtractFrame(context.Background(), "in.mp4", -1, "out.jpg"))
	})
}
