package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memesrc/memesrc-functions/internal/appsync"
	"github.com/memesrc/memesrc-functions/internal/testsupport"
)

func userReply(credits int) testsupport.Reply {
	return testsupport.Reply{Data: map[string]any{
		"getUserDetails": map[string]any{
			"id":       "sub-1",
			"username": "jerry",
			"credits":  credits,
			"votes": map[string]any{"items": []any{
				map[string]any{"series": map[string]any{"id": "seinfeld"}},
			}},
		},
	}}
}

func TestRepository_Create(t *testing.T) {
	gql := testsupport.NewFakeGraphQL(t).
		On("CreateUserDetails", testsupport.Reply{Data: map[string]any{"createUserDetails": map[string]any{"id": "sub-1"}}})
	repo := NewRepository(gql)

	resp, err := repo.Create(context.Background(), NewUser{
		Sub:      "sub-1",
		Username: "JerrySeinfeld",
		Email:    "jerry@example.com",
		Status:   "unverified",
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode())

	calls := gql.CallsTo("CreateUserDetails")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{
		"id":       "sub-1",
		"username": "jerryseinfeld",
		"email":    "jerry@example.com",
		"status":   "unverified",
		"credits":  0,
	}, calls[0].Input())
}

func TestRepository_Get(t *testing.T) {
	gql := testsupport.NewFakeGraphQL(t).On("GetUserDetails", userReply(7))
	repo := NewRepository(gql)

	user, err := repo.Get(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "jerry", user.Username)
	assert.Equal(t, 7, user.CreditBalance())
	assert.True(t, user.HasVotedFor("seinfeld"))
	assert.Equal(t, "sub-1", gql.Calls()[0].Variables["id"])
}

func TestRepository_GetMissing(t *testing.T) {
	gql := testsupport.NewFakeGraphQL(t).
		On("GetUserDetails", testsupport.Reply{Data: map[string]any{"getUserDetails": nil}})

	_, err := NewRepository(gql).Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_GetGraphQLError(t *testing.T) {
	gql := testsupport.NewFakeGraphQL(t).
		On("GetUserDetails", testsupport.Reply{Errors: []appsync.Error{{Message: "Not Authorized"}}})

	_, err := NewRepository(gql).Get(context.Background(), "sub-1")
	var qe *appsync.QueryError
	assert.ErrorAs(t, err, &qe)
}

func TestRepository_SpendCredits(t *testing.T) {
	tests := []struct {
		name        string
		balance     int
		amount      int
		expectedErr error
		remaining   int
		writes      int
	}{
		{name: "exact balance", balance: 3, amount: 3, remaining: 0, writes: 1},
		{name: "partial spend", balance: 10, amount: 1, remaining: 9, writes: 1},
		{name: "insufficient", balance: 1, amount: 2, expectedErr: ErrInsufficientCredits},
		{name: "zero amount", balance: 5, amount: 0, expectedErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gql := testsupport.NewFakeGraphQL(t).
				On("GetUserDetails", userReply(tt.balance)).
				On("UpdateUserDetails", testsupport.Reply{Data: map[string]any{"updateUserDetails": map[string]any{"id": "sub-1"}}})
			repo := NewRepository(gql)

			user, err := repo.SpendCredits(context.Background(), "sub-1", tt.amount)
			writes := gql.CallsTo("UpdateUserDetails")
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, writes)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.remaining, user.CreditBalance())
			require.Len(t, writes, tt.writes)
			assert.Equal(t, map[string]any{"id": "sub-1", "credits": tt.remaining}, writes[0].Input())
		})
	}
}

func TestRepository_SpendCreditsWriteFailure(t *testing.T) {
	gql := testsupport.NewFakeGraphQL(t).
		On("GetUserDetails", userReply(5)).
		On("UpdateUserDetails", testsupport.Reply{Err: errors.New("timeout")})

	_, err := NewRepository(gql).SpendCredits(context.Background(), "sub-1", 1)
	assert.ErrorContains(t, err, "failed to update credits")
}
