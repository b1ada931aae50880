// Package users manages UserDetails records through AppSync.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/memesrc/memesrc-functions/internal/appsync"
	"github.com/memesrc/memesrc-functions/internal/domain"
)

var (
	// ErrNotFound is returned when no record exists for the requested user.
	ErrNotFound = errors.New("user not found")

	// ErrInsufficientCredits is returned when a spend exceeds the balance.
	ErrInsufficientCredits = errors.New("user does not have enough credits")

	// ErrInvalidAmount is returned for non-positive credit amounts.
	ErrInvalidAmount = errors.New("credit amount must be positive")
)

// NewUser is the data captured at sign-up.
type NewUser struct {
	Sub      string
	Username string
	Email    string
	StripeID string
	Status   string
	Credits  int
}

// Repository reads and writes UserDetails.
type Repository struct {
	gql appsync.Doer
}

// NewRepository returns a Repository backed by gql.
func NewRepository(gql appsync.Doer) *Repository {
	return &Repository{gql: gql}
}

// Create stores a new UserDetails record. The raw response is returned so
// callers can relay AppSync's answer.
func (r *Repository) Create(ctx context.Context, u NewUser) (*appsync.Response, error) {
	input := map[string]any{"credits": u.Credits}
	if u.Sub != "" {
		input["id"] = u.Sub
	}
	if u.Username != "" {
		input["username"] = strings.ToLower(u.Username)
	}
	if u.Email != "" {
		input["email"] = u.Email
	}
	if u.StripeID != "" {
		input["stripeId"] = u.StripeID
	}
	if u.Status != "" {
		input["status"] = u.Status
	}
	return r.gql.Do(ctx, createUserDetailsMutation, map[string]any{"input": input})
}

// UpdateStatus sets the status of the user identified by sub.
func (r *Repository) UpdateStatus(ctx context.Context, sub, status string) (*appsync.Response, error) {
	return r.gql.Do(ctx, updateUserDetailsMutation, map[string]any{
		"input": map[string]any{"id": sub, "status": status},
	})
}

// GetRaw fetches the record of sub and returns the raw response.
func (r *Repository) GetRaw(ctx context.Context, sub string) (*appsync.Response, error) {
	return r.gql.Do(ctx, getUserDetailsQuery, map[string]any{"id": sub})
}

// Get fetches and decodes the record of sub.
func (r *Repository) Get(ctx context.Context, sub string) (domain.UserDetails, error) {
	resp, err := r.GetRaw(ctx, sub)
	if err != nil {
		return domain.UserDetails{}, err
	}
	if err := resp.Err(); err != nil {
		return domain.UserDetails{}, err
	}

	var data struct {
		GetUserDetails *domain.UserDetails `json:"getUserDetails"`
	}
	if err := resp.Decode(&data); err != nil {
		return domain.UserDetails{}, err
	}
	if data.GetUserDetails == nil {
		return domain.UserDetails{}, fmt.Errorf("%s: %w", sub, ErrNotFound)
	}
	return *data.GetUserDetails, nil
}

// SetCredits overwrites the credit balance of sub.
func (r *Repository) SetCredits(ctx context.Context, sub string, credits int) error {
	resp, err := r.gql.Do(ctx, updateUserDetailsMutation, map[string]any{
		"input": map[string]any{"id": sub, "credits": credits},
	})
	if err != nil {
		return err
	}
	return resp.Err()
}

// SpendCredits deducts amount from the balance of sub and returns the updated
// record.
//
// TODO: this is a read-then-write; move to a conditional update resolver so
// concurrent spends cannot both pass the balance check.
func (r *Repository) SpendCredits(ctx context.Context, sub string, amount int) (domain.UserDetails, error) {
	if amount <= 0 {
		return domain.UserDetails{}, ErrInvalidAmount
	}

	user, err := r.Get(ctx, sub)
	if err != nil {
		return domain.UserDetails{}, err
	}

	balance := user.CreditBalance()
	if balance < amount {
		return user, ErrInsufficientCredits
	}

	remaining := balance - amount
	if err := r.SetCredits(ctx, sub, remaining); err != nil {
		return user, fmt.Errorf("failed to update credits: %w", err)
	}
	user.Credits = &remaining
	return user, nil
}
