package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/memesrc/memesrc-functions/internal/apigw"
	"github.com/memesrc/memesrc-functions/internal/appsync"
	"github.com/memesrc/memesrc-functions/internal/domain"
	"github.com/memesrc/memesrc-functions/internal/router"
	"github.com/memesrc/memesrc-functions/internal/users"
	"github.com/memesrc/memesrc-functions/internal/votes"
)

// UserStore is the user record surface used by the user routes.
type UserStore interface {
	Create(ctx context.Context, u users.NewUser) (*appsync.Response, error)
	UpdateStatus(ctx context.Context, sub, status string) (*appsync.Response, error)
	GetRaw(ctx context.Context, sub string) (*appsync.Response, error)
	SpendCredits(ctx context.Context, sub string, amount int) (domain.UserDetails, error)
}

// VoteService is the vote surface used by the vote routes.
type VoteService interface {
	Cast(ctx context.Context, userSub, seriesID string, boost int) (*appsync.Response, error)
	Tally(ctx context.Context, userSub string) (votes.Tally, error)
}

// userRequest is the union of the JSON bodies the user routes accept.
type userRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Sub        string `json:"sub"`
	SubID      string `json:"subId"`
	NumCredits int    `json:"numCredits"`
	SeriesID   string `json:"seriesId"`
	Boost      int    `json:"boost"`
}

type maxVotesBody struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type creditsErrorBody struct {
	Error string `json:"error"`
}

// Users serves the /{env}/public/user/* and /{env}/public/vote* routes.
type Users struct {
	router *router.Router
	users  UserStore
	votes  VoteService
	logger *zap.Logger
}

// NewUsers wires the user routes for environment.
func NewUsers(environment string, store UserStore, voteSvc VoteService, logger *zap.Logger) *Users {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Users{users: store, votes: voteSvc, logger: logger}

	r := router.New(environment, h.notFound)
	r.Handle(router.UserNew, h.createUser)
	r.Handle(router.UserUpdateStatus, h.verifyUser)
	r.Handle(router.UserGet, h.getUser)
	r.Handle(router.UserSpendCredits, h.spendCredits)
	r.Handle(router.Vote, h.castVote)
	r.Handle(router.VoteList, h.listVotes)
	h.router = r

	return h
}

// Handle dispatches one API Gateway request.
func (h *Users) Handle(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	h.logger.Debug("user request",
		zap.String("path", req.Path),
		zap.String("method", req.HTTPMethod),
		zap.String("sub", apigw.CallerSub(req)))
	return h.router.Dispatch(ctx, req)
}

func (h *Users) notFound(_ context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	return apigw.JSON(http.StatusNotFound, apigw.ErrorBody(fmt.Sprintf("no route for %s", req.Path)), nil)
}

func parseBody(req events.APIGatewayProxyRequest) (userRequest, error) {
	var body userRequest
	if strings.TrimSpace(req.Body) == "" {
		return body, nil
	}
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return body, fmt.Errorf("invalid request body: %w", err)
	}
	return body, nil
}

// relay forwards an AppSync answer, or a 500 when the call itself failed.
func (h *Users) relay(op string, resp *appsync.Response, err error) events.APIGatewayProxyResponse {
	if err != nil {
		h.logger.Error("appsync call failed", zap.String("op", op), zap.Error(err))
		return apigw.JSON(http.StatusInternalServerError, apigw.ErrorBody(err.Error()), nil)
	}
	if len(resp.Errors) > 0 {
		h.logger.Warn("appsync returned errors", zap.String("op", op), zap.Any("errors", resp.Errors))
	}
	return apigw.JSON(resp.StatusCode(), resp, nil)
}

func badRequest(message string) events.APIGatewayProxyResponse {
	return apigw.JSON(http.StatusBadRequest, apigw.ErrorBody(message), nil)
}

func (h *Users) createUser(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := parseBody(req)
	if err != nil {
		return badRequest(err.Error())
	}
	if body.Sub == "" || body.Username == "" {
		return badRequest("Request must include 'sub' and 'username' in Payload.")
	}

	h.logger.Info("creating user", zap.String("sub", body.Sub), zap.String("username", body.Username))
	resp, err := h.users.Create(ctx, users.NewUser{
		Sub:      body.Sub,
		Username: body.Username,
		Email:    body.Email,
		Status:   domain.StatusUnverified,
		Credits:  0,
	})
	return h.relay("createUserDetails", resp, err)
}

func (h *Users) verifyUser(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	sub := apigw.CallerSub(req)
	if sub == "" {
		return badRequest("Request must be made by a signed-in user.")
	}
	resp, err := h.users.UpdateStatus(ctx, sub, domain.StatusVerified)
	return h.relay("updateUserDetails", resp, err)
}

// getUser only ever returns the caller's own record.
func (h *Users) getUser(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	sub := apigw.CallerSub(req)
	if sub == "" {
		return badRequest("Request must include either 'username' or 'subId' in Payload.")
	}
	resp, err := h.users.GetRaw(ctx, sub)
	return h.relay("getUserDetails", resp, err)
}

func (h *Users) spendCredits(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := parseBody(req)
	if err != nil {
		return badRequest(err.Error())
	}
	// Credits are always spent from the caller's own balance.
	sub := apigw.CallerSub(req)
	if sub == "" || body.NumCredits <= 0 {
		return badRequest("Request must include 'subId' and 'numCredits' in Payload.")
	}
	if body.SubID != "" && body.SubID != sub {
		h.logger.Warn("spend credits for another user rejected",
			zap.String("caller", sub),
			zap.String("subId", body.SubID))
		return apigw.JSON(http.StatusForbidden, apigw.ErrorBody("Credits can only be spent by their owner."), nil)
	}

	user, err := h.users.SpendCredits(ctx, sub, body.NumCredits)
	switch {
	case errors.Is(err, users.ErrInsufficientCredits):
		return apigw.JSON(http.StatusBadRequest, creditsErrorBody{Error: "User does not have enough credits."}, nil)
	case errors.Is(err, users.ErrNotFound):
		return apigw.JSON(http.StatusNotFound, apigw.ErrorBody(err.Error()), nil)
	case err != nil:
		h.logger.Error("spend credits failed", zap.String("sub", sub), zap.Error(err))
		return apigw.JSON(http.StatusInternalServerError, apigw.ErrorBody(err.Error()), nil)
	}

	h.logger.Info("credits spent",
		zap.String("sub", sub),
		zap.Int("spent", body.NumCredits),
		zap.Int("remaining", user.CreditBalance()))
	return apigw.JSON(http.StatusOK, map[string]any{
		"data": map[string]any{"getUserDetails": user},
	}, nil)
}

func (h *Users) castVote(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	sub := apigw.CallerSub(req)
	if sub == "" {
		return badRequest("Request must be made by a signed-in user.")
	}
	body, err := parseBody(req)
	if err != nil {
		return badRequest(err.Error())
	}

	resp, err := h.votes.Cast(ctx, sub, body.SeriesID, body.Boost)
	switch {
	case errors.Is(err, votes.ErrAlreadyVoted):
		return apigw.JSON(http.StatusForbidden, maxVotesBody{
			Name:    "MaxVotesReached",
			Message: "You have reached the maximum number of votes for this series.",
		}, nil)
	case errors.Is(err, votes.ErrMissingSeries):
		return badRequest("Request must include 'seriesId' in Payload.")
	}

	if err == nil {
		h.logger.Info("vote cast", zap.String("sub", sub), zap.String("series", body.SeriesID), zap.Int("boost", votes.Direction(body.Boost)))
	}
	return h.relay("createSeriesUserVote", resp, err)
}

func (h *Users) listVotes(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	tally, err := h.votes.Tally(ctx, apigw.CallerSub(req))
	if err != nil {
		h.logger.Error("failed to get votes", zap.Error(err))
		return apigw.JSON(http.StatusInternalServerError, fmt.Sprintf("Failed to get votes: %v", err), nil)
	}
	return apigw.JSON(http.StatusOK, tally, nil)
}
