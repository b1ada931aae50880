// Package handler holds the Lambda entry logic of the memeSRC functions.
// Handlers never return Lambda errors for request-level failures; they map
// them onto API Gateway responses.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/memesrc/memesrc-functions/internal/apigw"
	"github.com/memesrc/memesrc-functions/internal/chunker"
	"github.com/memesrc/memesrc-functions/internal/storage"
)

// FrameCacheControl is sent with every extracted frame.
const FrameCacheControl = "max-age=31536000"

// ChunkStore downloads source chunks.
type ChunkStore interface {
	DownloadToTemp(ctx context.Context, key, dir, ext string) (string, error)
}

// FrameExtractor pulls one frame out of a chunk.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, input string, offset float64, output string) error
}

// Frames serves GET /{index}/{season}/{episode}/{frame} as a JPEG.
type Frames struct {
	store     ChunkStore
	extractor FrameExtractor
	tempDir   string
	logger    *zap.Logger
}

// NewFrames returns a Frames handler writing scratch files to tempDir.
func NewFrames(store ChunkStore, extractor FrameExtractor, tempDir string, logger *zap.Logger) *Frames {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Frames{store: store, extractor: extractor, tempDir: tempDir, logger: logger}
}

// Handle extracts the requested frame.
func (h *Frames) Handle(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	p := req.PathParameters
	ref, err := chunker.ParseFrameRef(p["index"], p["season"], p["episode"], p["frame"])
	switch {
	case errors.Is(err, chunker.ErrMissingParameters):
		return apigw.JSON(http.StatusBadRequest, "Missing required path parameters", nil)
	case err != nil:
		return apigw.JSON(http.StatusBadRequest, "Invalid frame number", nil)
	}

	data, err := h.extract(ctx, ref)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.logger.Info("frame source missing", zap.Any("ref", ref), zap.Error(err))
			return apigw.JSON(http.StatusNotFound, "Frame not found", nil)
		}
		h.logger.Error("frame extraction failed", zap.Any("ref", ref), zap.Error(err))
		return apigw.JSON(http.StatusInternalServerError, fmt.Sprintf("An error occurred: %v", err), nil)
	}

	return apigw.Binary(http.StatusOK, "image/jpeg", data, map[string]string{
		"Cache-Control": FrameCacheControl,
	})
}

func (h *Frames) extract(ctx context.Context, ref chunker.FrameRef) ([]byte, error) {
	key, err := chunker.ObjectKey(ref)
	if err != nil {
		return nil, err
	}
	loc, err := chunker.Locate(ref.Frame)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("extracting frame",
		zap.String("key", key),
		zap.Int("frame", ref.Frame),
		zap.String("offset", chunker.FormatOffset(loc.Offset)))

	videoPath, err := h.store.DownloadToTemp(ctx, key, h.tempDir, ".mp4")
	if err != nil {
		return nil, err
	}
	defer os.Remove(videoPath)

	framePath := filepath.Join(h.tempDir, fmt.Sprintf("frame-%s.jpg", uuid.NewString()))
	defer os.Remove(framePath)

	if err := h.extractor.ExtractFrame(ctx, videoPath, loc.Offset, framePath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(framePath)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return data, nil
}
