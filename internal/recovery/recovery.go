// Package recovery emails users the usernames registered to their address.
package recovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ciptypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

const (
	// Subject is the subject line of recovery emails.
	Subject = "Username Recovery"

	listLimit = 60
	maxPages  = 1000
)

// UserLister is the Cognito call used to find accounts.
type UserLister interface {
	ListUsers(ctx context.Context, params *cip.ListUsersInput, optFns ...func(*cip.Options)) (*cip.ListUsersOutput, error)
}

// EmailSender is the SES call used to deliver the result.
type EmailSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Account is a Cognito user matched by email.
type Account struct {
	Username  string
	CreatedAt time.Time
}

// Service looks up usernames and sends the recovery email.
type Service struct {
	cognito    UserLister
	mailer     EmailSender
	userPoolID string
	source     string
	logger     *zap.Logger
}

// NewService returns a Service for one user pool.
func NewService(cognito UserLister, mailer EmailSender, userPoolID, source string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cognito:    cognito,
		mailer:     mailer,
		userPoolID: userPoolID,
		source:     source,
		logger:     logger,
	}
}

// EmailFilter builds the ListUsers filter for an address.
func EmailFilter(email string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(email)
	return fmt.Sprintf(`email = "%s"`, escaped)
}

// FindAccounts lists every account registered with email, oldest first.
func (s *Service) FindAccounts(ctx context.Context, email string) ([]Account, error) {
	input := &cip.ListUsersInput{
		UserPoolId:      aws.String(s.userPoolID),
		AttributesToGet: []string{"email"},
		Filter:          aws.String(EmailFilter(email)),
		Limit:           aws.Int32(listLimit),
	}

	var accounts []Account
	for page := 0; page < maxPages; page++ {
		out, err := s.cognito.ListUsers(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		accounts = append(accounts, toAccounts(out.Users)...)

		if out.PaginationToken == nil || *out.PaginationToken == "" {
			sort.SliceStable(accounts, func(i, j int) bool {
				return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
			})
			return accounts, nil
		}
		s.logger.Debug("pulled another page of users", zap.Int("page", page+1))
		input.PaginationToken = out.PaginationToken
	}
	return nil, fmt.Errorf("list users: more than %d pages", maxPages)
}

func toAccounts(users []ciptypes.UserType) []Account {
	out := make([]Account, 0, len(users))
	for _, u := range users {
		a := Account{Username: aws.ToString(u.Username)}
		if u.UserCreateDate != nil {
			a.CreatedAt = *u.UserCreateDate
		}
		out = append(out, a)
	}
	return out
}

// ComposeBody renders the email text for the accounts found for email.
func ComposeBody(email string, accounts []Account) string {
	switch len(accounts) {
	case 0:
		return fmt.Sprintf("You requested a memeSRC username recovery, but we couldn't find an account using this email address (%s). You may have used a different email or haven't yet registered an account.", email)
	case 1:
		return "Your memeSRC username is: " + accounts[0].Username
	}

	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		names = append(names, a.Username)
	}
	return "Your memeSRC usernames:\n\n • " + strings.Join(names, "\n • ") + "\n\n"
}

// Recover finds the accounts for email and mails the result. The email is
// sent whether or not accounts exist. It returns the number of accounts found.
func (s *Service) Recover(ctx context.Context, email string) (int, error) {
	accounts, err := s.FindAccounts(ctx, email)
	if err != nil {
		return 0, err
	}

	body := ComposeBody(email, accounts)
	if err := s.send(ctx, email, body); err != nil {
		return len(accounts), err
	}
	return len(accounts), nil
}

func (s *Service) send(ctx context.Context, to, body string) error {
	_, err := s.mailer.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(s.source),
		Destination: &sestypes.Destination{ToAddresses: []string{to}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(Subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
