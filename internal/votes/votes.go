// Package votes casts and aggregates votes on requested series.
package votes

import (
	"context"
	"errors"
	"fmt"

	"github.com/memesrc/memesrc-functions/internal/appsync"
	"github.com/memesrc/memesrc-functions/internal/domain"
)

// PageSize is the listSeriesUserVotes page size.
const PageSize = 1000

// maxPages bounds pagination in case the API keeps returning a token.
const maxPages = 10000

var (
	// ErrAlreadyVoted is returned when the user already voted on the series.
	ErrAlreadyVoted = errors.New("maximum number of votes reached for this series")

	// ErrMissingSeries is returned when no series id was supplied.
	ErrMissingSeries = errors.New("seriesId is required")
)

const listVotesQuery = `query ListSeriesUserVotes($limit: Int, $nextToken: String) {
  listSeriesUserVotes(limit: $limit, nextToken: $nextToken) {
    items {
      id
      boost
      userDetailsVotesId
      seriesUserVoteSeriesId
    }
    nextToken
  }
}`

const createVoteMutation = `mutation CreateSeriesUserVote($input: CreateSeriesUserVoteInput!) {
  createSeriesUserVote(input: $input) {
    id
  }
}`

// UserGetter loads the voter's record to check for existing votes.
type UserGetter interface {
	Get(ctx context.Context, sub string) (domain.UserDetails, error)
}

// Service talks to AppSync on behalf of the vote routes.
type Service struct {
	gql   appsync.Doer
	users UserGetter
}

// NewService returns a Service.
func NewService(gql appsync.Doer, users UserGetter) *Service {
	return &Service{gql: gql, users: users}
}

// ListAll reads every stored vote, following pagination tokens.
func (s *Service) ListAll(ctx context.Context) ([]domain.SeriesUserVote, error) {
	var all []domain.SeriesUserVote
	var token *string

	for page := 0; page < maxPages; page++ {
		vars := map[string]any{"limit": PageSize}
		if token != nil {
			vars["nextToken"] = *token
		}

		resp, err := s.gql.Do(ctx, listVotesQuery, vars)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch votes: %w", err)
		}
		if err := resp.Err(); err != nil {
			return nil, fmt.Errorf("failed to fetch votes (status %d): %w", resp.StatusCode(), err)
		}

		var data struct {
			ListSeriesUserVotes struct {
				Items     []domain.SeriesUserVote `json:"items"`
				NextToken *string                 `json:"nextToken"`
			} `json:"listSeriesUserVotes"`
		}
		if err := resp.Decode(&data); err != nil {
			return nil, err
		}

		all = append(all, data.ListSeriesUserVotes.Items...)
		token = data.ListSeriesUserVotes.NextToken
		if token == nil || *token == "" {
			return all, nil
		}
	}
	return nil, fmt.Errorf("failed to fetch votes: more than %d pages", maxPages)
}

// Tally lists all votes and aggregates them for userSub.
func (s *Service) Tally(ctx context.Context, userSub string) (Tally, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return Tally{}, err
	}
	return Aggregate(all, userSub), nil
}

// Direction normalizes a requested boost to a single up or down vote.
func Direction(boost int) int {
	if boost > 0 {
		return 1
	}
	return -1
}

// Cast records one vote by userSub on seriesID. A user may vote on a series
// only once.
func (s *Service) Cast(ctx context.Context, userSub, seriesID string, boost int) (*appsync.Response, error) {
	if seriesID == "" {
		return nil, ErrMissingSeries
	}

	user, err := s.users.Get(ctx, userSub)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.HasVotedFor(seriesID) {
		return nil, ErrAlreadyVoted
	}

	return s.gql.Do(ctx, createVoteMutation, map[string]any{
		"input": map[string]any{
			"userDetailsVotesId":     userSub,
			"seriesUserVoteSeriesId": seriesID,
			"boost":                  Direction(boost),
		},
	})
}
