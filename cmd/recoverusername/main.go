// Package main is the entry point for the username recovery function.
package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"go.uber.org/zap"

	"github.com/memesrc/memesrc-functions/internal/config"
	"github.com/memesrc/memesrc-functions/internal/handler"
	"github.com/memesrc/memesrc-functions/internal/logging"
	"github.com/memesrc/memesrc-functions/internal/recovery"
	"github.com/memesrc/memesrc-functions/internal/warmup"
)

// SES identities for memesrc.com are verified in us-east-1 only.
const sesRegion = "us-east-1"

type function struct {
	recovery *handler.Recovery
	warmer   *warmup.Warmer
	logger   *zap.Logger
}

func main() {
	cfg, err := config.LoadRecoverUsername()
	if err != nil {
		log.Fatalf("memesrcRecoverUsername: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, zap.String("function", "memesrcRecoverUsername"), zap.String("env", cfg.Env))
	if err != nil {
		log.Fatalf("memesrcRecoverUsername: logger: %v", err)
	}
	defer logger.Sync()

	awsCfg, err := config.AWS(context.Background(), cfg.Region)
	if err != nil {
		logger.Fatal("aws config", zap.Error(err))
	}

	mailer := ses.NewFromConfig(awsCfg, func(o *ses.Options) { o.Region = sesRegion })
	svc := recovery.NewService(
		cognitoidentityprovider.NewFromConfig(awsCfg),
		mailer,
		cfg.UserPoolID,
		cfg.EmailSource,
		logger,
	)

	fn := &function{
		recovery: handler.NewRecovery(svc, logger),
		warmer:   warmup.New(lambdasdk.NewFromConfig(awsCfg), cfg.FunctionName, logger),
		logger:   logger,
	}
	lambda.Start(fn.handleRequest)
}

func (fn *function) handleRequest(ctx context.Context, event json.RawMessage) (any, error) {
	if evt, ok := warmup.Detect(event); ok {
		return fn.warmer.Handle(ctx, evt), nil
	}

	var req handler.RecoveryRequest
	if err := json.Unmarshal(event, &req); err != nil {
		fn.logger.Error("undecodable event", zap.Error(err))
		return nil, err
	}
	return fn.recovery.Handle(ctx, req), nil
}
