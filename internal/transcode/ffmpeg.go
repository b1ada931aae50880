// Package transcode wraps the ffmpeg invocations used to pull still frames
// out of source chunks.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/memesrc/memesrc-functions/internal/chunker"
)

// Extractor runs ffmpeg to extract single frames.
type Extractor struct {
	binary string
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New returns an Extractor using binary, or "ffmpeg" from PATH when empty.
func New(binary string) *Extractor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Extractor{binary: binary, run: combinedOutput}
}

// Binary returns the ffmpeg executable the extractor runs.
func (e *Extractor) Binary() string {
	return e.binary
}

// Args returns the ffmpeg arguments that write the frame at offset seconds
// of input to output as a square-pixel JPEG.
func Args(input string, offset float64, output string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", input,
		"-ss", chunker.FormatOffset(offset),
		"-vframes", "1",
		"-vf", "scale=iw*sar:ih,setsar=1",
		"-c:v", "mjpeg",
		"-f", "image2",
		output,
	}
}

// ExtractFrame writes the frame at offset seconds of input to output.
func (e *Extractor) ExtractFrame(ctx context.Context, input string, offset float64, output string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("ffmpeg extract: empty input path")
	}
	if strings.TrimSpace(output) == "" {
		return errors.New("ffmpeg extract: empty output path")
	}
	if offset < 0 {
		return fmt.Errorf("ffmpeg extract: negative offset %v", offset)
	}

	out, err := e.run(ctx, e.binary, Args(input, offset, output)...)
	if err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(out)))
	}

	info, err := os.Stat(output)
	if err != nil {
		return fmt.Errorf("ffmpeg extract: no output: %w", err)
	}
	if info.Size() == 0 {
		// Seeking past the end of the chunk exits 0 without a frame.
		return fmt.Errorf("ffmpeg extract: empty output at offset %s", chunker.FormatOffset(offset))
	}
	return nil
}

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
