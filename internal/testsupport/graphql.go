// Package testsupport holds fakes shared by package tests.
package testsupport

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/memesrc/memesrc-functions/internal/appsync"
)

// Call records one GraphQL operation sent to a FakeGraphQL.
type Call struct {
	Query     string
	Variables map[string]any
}

// Operation returns the operation name ("GetUserDetails", ...) of the call.
func (c Call) Operation() string {
	return OperationName(c.Query)
}

// Input returns the "input" variable as a map, or nil.
func (c Call) Input() map[string]any {
	in, _ := c.Variables["input"].(map[string]any)
	return in
}

// Reply is what a FakeGraphQL answers for an operation.
type Reply struct {
	Data   any
	Errors []appsync.Error
	Err    error
}

// FakeGraphQL is a scripted appsync.Doer keyed by operation name. Replies
// queued for an operation are consumed in order; the last one repeats.
type FakeGraphQL struct {
	t       testing.TB
	mu      sync.Mutex
	replies map[string][]Reply
	calls   []Call
}

// NewFakeGraphQL returns an empty fake.
func NewFakeGraphQL(t testing.TB) *FakeGraphQL {
	return &FakeGraphQL{t: t, replies: map[string][]Reply{}}
}

// On queues replies for an operation name.
func (f *FakeGraphQL) On(operation string, replies ...Reply) *FakeGraphQL {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[operation] = append(f.replies[operation], replies...)
	return f
}

// Calls returns the operations received so far.
func (f *FakeGraphQL) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the calls made to one operation.
func (f *FakeGraphQL) CallsTo(operation string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Operation() == operation {
			out = append(out, c)
		}
	}
	return out
}

// Do implements appsync.Doer.
func (f *FakeGraphQL) Do(_ context.Context, query string, variables map[string]any) (*appsync.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	op := OperationName(query)
	f.calls = append(f.calls, Call{Query: query, Variables: variables})

	queue := f.replies[op]
	if len(queue) == 0 {
		f.t.Errorf("unexpected graphql operation %q", op)
		return &appsync.Response{Errors: []appsync.Error{{Message: "unexpected operation " + op}}}, nil
	}
	reply := queue[0]
	if len(queue) > 1 {
		f.replies[op] = queue[1:]
	}

	if reply.Err != nil {
		return nil, reply.Err
	}
	resp := &appsync.Response{Errors: reply.Errors}
	if reply.Data != nil {
		raw, err := json.Marshal(reply.Data)
		if err != nil {
			f.t.Fatalf("marshal fake reply: %v", err)
		}
		resp.Data = raw
	}
	return resp, nil
}

// OperationName extracts the name following "query" or "mutation".
func OperationName(query string) string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '(' || r == '{'
	})
	for i, f := range fields {
		if (f == "query" || f == "mutation") && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}
