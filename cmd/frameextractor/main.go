// Package main is the entry point for the frame extraction Lambda function.
package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"go.uber.org/zap"

	"github.com/memesrc/memesrc-functions/internal/config"
	"github.com/memesrc/memesrc-functions/internal/handler"
	"github.com/memesrc/memesrc-functions/internal/logging"
	"github.com/memesrc/memesrc-functions/internal/storage"
	"github.com/memesrc/memesrc-functions/internal/transcode"
	"github.com/memesrc/memesrc-functions/internal/warmup"
)

type function struct {
	frames *handler.Frames
	warmer *warmup.Warmer
	logger *zap.Logger
}

func main() {
	cfg, err := config.LoadFrameExtractor()
	if err != nil {
		log.Fatalf("frameExtractor: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, zap.String("function", "frameExtractor"), zap.String("env", cfg.Env))
	if err != nil {
		log.Fatalf("frameExtractor: logger: %v", err)
	}
	defer logger.Sync()

	awsCfg, err := config.AWS(context.Background(), cfg.Region)
	if err != nil {
		logger.Fatal("aws config", zap.Error(err))
	}

	extractor := transcode.New(cfg.FFmpegPath)
	fn := &function{
		frames: handler.NewFrames(storage.NewFromConfig(awsCfg, cfg.Bucket), extractor, cfg.TempDir, logger),
		warmer: warmup.New(lambdasdk.NewFromConfig(awsCfg), cfg.FunctionName, logger),
		logger: logger,
	}

	logger.Info("frame extractor ready",
		zap.String("bucket", cfg.Bucket),
		zap.String("ffmpeg", extractor.Binary()))
	lambda.Start(fn.handleRequest)
}

func (fn *function) handleRequest(ctx context.Context, event json.RawMessage) (any, error) {
	// Warmup detection must run before the event is decoded as a request.
	if evt, ok := warmup.Detect(event); ok {
		return fn.warmer.Handle(ctx, evt), nil
	}

	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &req); err != nil {
		fn.logger.Error("undecodable event", zap.Error(err))
		return nil, err
	}
	return fn.frames.Handle(ctx, req), nil
}
