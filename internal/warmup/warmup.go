// Package warmup keeps Lambda instances warm. A scheduled rule sends
// {"source":"warmup","concurrency":N}; the receiving instance fans out N
// asynchronous self-invocations so N+1 instances stay hot.
package warmup

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// Source identifies warmup events from the scheduler.
	Source = "warmup"

	// Delay keeps this instance busy long enough for siblings to overlap.
	Delay = 75 * time.Millisecond

	maxConcurrency = 50
)

// Event is the scheduler payload.
type Event struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// Body is returned inside the warmup response.
type Body struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// Response mirrors the proxy response shape so callers can log it uniformly.
type Response struct {
	StatusCode int  `json:"statusCode"`
	Body       Body `json:"body"`
}

// Invoker is the part of the Lambda client used for self-invocation.
type Invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// Detect reports whether raw is a warmup event.
func Detect(raw json.RawMessage) (Event, bool) {
	var evt struct {
		Source      *string  `json:"source"`
		Concurrency *float64 `json:"concurrency"`
	}
	if err := json.Unmarshal(raw, &evt); err != nil {
		return Event{}, false
	}
	if evt.Source == nil || *evt.Source != Source {
		return Event{}, false
	}

	out := Event{Source: Source}
	if evt.Concurrency != nil && *evt.Concurrency > 0 {
		out.Concurrency = int(*evt.Concurrency)
	}
	return out, true
}

// Warmer answers warmup events for one function.
type Warmer struct {
	client       Invoker
	functionName string
	logger       *zap.Logger
	delay        time.Duration
}

// New creates a Warmer. client may be nil, in which case fan-out is skipped.
func New(client Invoker, functionName string, logger *zap.Logger) *Warmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Warmer{client: client, functionName: functionName, logger: logger, delay: Delay}
}

// Handle processes a warmup event.
func (w *Warmer) Handle(ctx context.Context, evt Event) Response {
	warmed := 1

	n := evt.Concurrency
	if n > maxConcurrency {
		n = maxConcurrency
	}
	if n > 0 && w.client != nil && w.functionName != "" {
		if err := w.fanOut(ctx, n); err != nil {
			w.logger.Warn("warmup fan-out failed", zap.Int("concurrency", n), zap.Error(err))
		} else {
			warmed += n
		}
	}

	time.Sleep(w.delay)

	return Response{
		StatusCode: 200,
		Body:       Body{Status: "warm", InstancesWarmed: warmed},
	}
}

func (w *Warmer) fanOut(ctx context.Context, count int) error {
	// Children must not fan out again.
	payload, err := json.Marshal(Event{Source: Source, Concurrency: 0})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			_, err := w.client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(w.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			return err
		})
	}
	return g.Wait()
}
