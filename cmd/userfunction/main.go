// Package main is the entry point for the memeSRC user and vote API function.
package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"go.uber.org/zap"

	"github.com/memesrc/memesrc-functions/internal/appsync"
	"github.com/memesrc/memesrc-functions/internal/config"
	"github.com/memesrc/memesrc-functions/internal/handler"
	"github.com/memesrc/memesrc-functions/internal/logging"
	"github.com/memesrc/memesrc-functions/internal/users"
	"github.com/memesrc/memesrc-functions/internal/votes"
	"github.com/memesrc/memesrc-functions/internal/warmup"
)

type function struct {
	users  *handler.Users
	warmer *warmup.Warmer
	logger *zap.Logger
}

func main() {
	cfg, err := config.LoadUserFunction()
	if err != nil {
		log.Fatalf("memesrcUserFunction: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, zap.String("function", "memesrcUserFunction"), zap.String("env", cfg.Env))
	if err != nil {
		log.Fatalf("memesrcUserFunction: logger: %v", err)
	}
	defer logger.Sync()

	awsCfg, err := config.AWS(context.Background(), cfg.Region)
	if err != nil {
		logger.Fatal("aws config", zap.Error(err))
	}

	gql := appsync.NewFromConfig(awsCfg, cfg.GraphQLEndpoint)
	repo := users.NewRepository(gql)

	fn := &function{
		users:  handler.NewUsers(cfg.Env, repo, votes.NewService(gql, repo), logger),
		warmer: warmup.New(lambdasdk.NewFromConfig(awsCfg), cfg.FunctionName, logger),
		logger: logger,
	}
	lambda.Start(fn.handleRequest)
}

func (fn *function) handleRequest(ctx context.Context, event json.RawMessage) (any, error) {
	if evt, ok := warmup.Detect(event); ok {
		return fn.warmer.Handle(ctx, evt), nil
	}

	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &req); err != nil {
		fn.logger.Error("undecodable event", zap.Error(err))
		return nil, err
	}
	return fn.users.Handle(ctx, req), nil
}
