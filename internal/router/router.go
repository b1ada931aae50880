// Package router maps user-function request paths onto handlers.
package router

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Route names, relative to /{env}/public/.
const (
	UserNew          = "user/new"
	UserUpdateStatus = "user/update/status"
	UserGet          = "user/get"
	UserSpendCredits = "user/spendCredits"
	Vote             = "vote"
	VoteList         = "vote/list"
)

// Handler serves one route.
type Handler func(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse

// Router dispatches on the stage-prefixed path.
type Router struct {
	environment string
	routes      map[string]Handler
	notFound    Handler
}

// New creates a Router for the given Amplify environment ("dev", "beta", ...).
func New(environment string, notFound Handler) *Router {
	if environment == "" {
		environment = "dev"
	}
	return &Router{
		environment: environment,
		routes:      map[string]Handler{},
		notFound:    notFound,
	}
}

// Handle registers h for route.
func (r *Router) Handle(route string, h Handler) {
	r.routes[strings.Trim(route, "/")] = h
}

// Prefix returns the path prefix every route lives under.
func (r *Router) Prefix() string {
	return "/" + r.environment + "/public/"
}

// Resolve returns the route name for path, or false when path is outside
// this environment's public prefix or unregistered.
func (r *Router) Resolve(path string) (string, bool) {
	prefix := r.Prefix()
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	route := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if _, ok := r.routes[route]; !ok {
		return "", false
	}
	return route, true
}

// Dispatch serves req with the matching handler.
func (r *Router) Dispatch(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	route, ok := r.Resolve(req.Path)
	if !ok {
		return r.notFound(ctx, req)
	}
	return r.routes[route](ctx, req)
}
