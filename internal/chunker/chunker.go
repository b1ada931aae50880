// Package chunker maps global frame numbers onto the fixed-length video
// chunks stored in the generated-images bucket.
package chunker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// ChunkDuration is the length of every source chunk in seconds.
	ChunkDuration = 25

	// FPS is the frame rate the frame indexes were built at.
	FPS = 10

	// FramesPerChunk is the number of indexed frames in one chunk.
	FramesPerChunk = ChunkDuration * FPS

	// KeyPrefix is where source chunks live inside the bucket.
	KeyPrefix = "protected/src"
)

var (
	// ErrMissingParameters is returned when any part of a frame reference is empty.
	ErrMissingParameters = errors.New("missing required path parameters")

	// ErrInvalidFrame is returned for frame numbers that are not positive integers.
	ErrInvalidFrame = errors.New("invalid frame number")
)

// FrameRef identifies one frame of one episode in an index.
type FrameRef struct {
	Index   string `json:"index"`
	Season  string `json:"season"`
	Episode string `json:"episode"`
	Frame   int    `json:"frame"`
}

// Location is the position of a frame inside the chunk that contains it.
type Location struct {
	Chunk  int     `json:"chunk"`
	Offset float64 `json:"offset"`
}

// ParseFrameRef validates raw path parameters and builds a FrameRef.
func ParseFrameRef(index, season, episode, frame string) (FrameRef, error) {
	if index == "" || season == "" || episode == "" || frame == "" {
		return FrameRef{}, ErrMissingParameters
	}

	n, err := strconv.Atoi(strings.TrimSpace(frame))
	if err != nil || n < 1 {
		return FrameRef{}, ErrInvalidFrame
	}

	return FrameRef{Index: index, Season: season, Episode: episode, Frame: n}, nil
}

// Locate returns the chunk number and the in-chunk offset (seconds) of a
// 1-based frame number.
func Locate(frame int) (Location, error) {
	if frame < 1 {
		return Location{}, ErrInvalidFrame
	}

	zeroBased := frame - 1
	return Location{
		Chunk:  zeroBased / FramesPerChunk,
		Offset: float64(zeroBased%FramesPerChunk) / FPS,
	}, nil
}

// ObjectKey returns the bucket key of the chunk holding ref.
func ObjectKey(ref FrameRef) (string, error) {
	loc, err := Locate(ref.Frame)
	if err != nil {
		return "", err
	}
	return chunkKey(ref.Index, ref.Season, ref.Episode, loc.Chunk), nil
}

func chunkKey(index, season, episode string, chunk int) string {
	return fmt.Sprintf("%s/%s/%s/%s/%d.mp4", KeyPrefix, index, season, episode, chunk)
}

// FormatOffset renders an offset the way ffmpeg's -ss expects it.
func FormatOffset(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}
