// Package appsync sends IAM-signed GraphQL requests to the memeSRC AppSync API.
package appsync

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

const serviceName = "appsync"

// Error is one GraphQL error returned by AppSync.
type Error struct {
	Message   string `json:"message"`
	ErrorType string `json:"errorType,omitempty"`
}

// Response is the GraphQL response envelope.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []Error         `json:"errors,omitempty"`
}

// StatusCode is 200 for clean responses and 400 when AppSync reported errors.
func (r *Response) StatusCode() int {
	if len(r.Errors) > 0 {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// Err returns the GraphQL errors as a Go error, or nil.
func (r *Response) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return &QueryError{Errors: r.Errors, msg: strings.Join(msgs, "; ")}
}

// Decode unmarshals Data into out.
func (r *Response) Decode(out any) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return fmt.Errorf("graphql response has no data")
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("failed to parse graphql data: %w", err)
	}
	return nil
}

// QueryError reports errors returned in a GraphQL response body.
type QueryError struct {
	Errors []Error
	msg    string
}

func (e *QueryError) Error() string {
	return "graphql: " + e.msg
}

// Doer executes GraphQL operations. *Client implements it.
type Doer interface {
	Do(ctx context.Context, query string, variables map[string]any) (*Response, error)
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client signs and sends GraphQL requests.
type Client struct {
	endpoint    string
	region      string
	credentials aws.CredentialsProvider
	signer      *v4.Signer
	httpClient  HTTPDoer
	now         func() time.Time
}

// New creates a Client for endpoint signed with credentials for region.
func New(endpoint, region string, credentials aws.CredentialsProvider, httpClient HTTPDoer) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		endpoint:    endpoint,
		region:      region,
		credentials: credentials,
		signer:      v4.NewSigner(),
		httpClient:  httpClient,
		now:         time.Now,
	}
}

// NewFromConfig creates a Client using the SDK config's region and credentials.
func NewFromConfig(cfg aws.Config, endpoint string) *Client {
	return New(endpoint, cfg.Region, cfg.Credentials, nil)
}

type requestBody struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Do sends one operation. A non-nil error means the request could not be
// completed; GraphQL-level errors are returned inside the Response.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	payload, err := json.Marshal(requestBody{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.sign(ctx, req, payload); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("appsync request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("appsync returned %d: %s", resp.StatusCode, truncate(string(body), 256))
	}
	if resp.StatusCode >= 300 && len(out.Errors) == 0 {
		out.Errors = []Error{{Message: fmt.Sprintf("appsync returned %d", resp.StatusCode)}}
	}
	return &out, nil
}

func (c *Client) sign(ctx context.Context, req *http.Request, payload []byte) error {
	if c.credentials == nil {
		return errors.New("no AWS credentials configured")
	}
	creds, err := c.credentials.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve credentials: %w", err)
	}

	sum := sha256.Sum256(payload)
	if err := c.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(sum[:]), serviceName, c.region, c.now()); err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
