package gitlab

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"golang.org/x/sync/errgroup"
)

// BatchOperation is one independent request in a batch.
type BatchOperation struct {
	ID       string
	Endpoint *Endpoint
	// NoAnswer discards the success body, as NoAnswer does.
	NoAnswer bool
	Callback func(result *BatchResult)
}

// BatchResult is the outcome of one BatchOperation.
type BatchResult struct {
	ID       string          `json:"id"             yaml:"id"`
	Success  bool            `json:"success"        yaml:"success"`
	Data     json.RawMessage `json:"data,omitempty" yaml:"-"`
	Error    error           `json:"-"              yaml:"-"`
	Duration time.Duration   `json:"duration"       yaml:"duration"`
}

// BatchExecutor runs independent requests with bounded concurrency. Every
// operation is a separate Execute or NoAnswer call; one failure does not
// cancel the others.
type BatchExecutor struct {
	client      Client
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client Client, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs operations and returns results in input order.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) []BatchResult {
	results := make([]BatchResult, len(operations))

	var group errgroup.Group

	group.SetLimit(b.concurrency)

	for index, operation := range operations {
		group.Go(func() error {
			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = result

			if operation.Callback != nil {
				operation.Callback(&results[index])
			}

			return nil
		})
	}

	_ = group.Wait()

	return results
}

func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) BatchResult {
	result := BatchResult{ID: operation.ID}

	if operation.NoAnswer {
		result.Error = NoAnswer(ctx, b.client, operation.Endpoint)
		result.Success = result.Error == nil

		return result
	}

	data, err := Raw(ctx, b.client, operation.Endpoint)
	if err != nil {
		result.Error = err

		return result
	}

	result.Data = data
	result.Success = true

	return result
}

// Errors returns the failed results.
func Errors(results []BatchResult) []BatchResult {
	var failed []BatchResult

	for _, result := range results {
		if !result.Success {
			failed = append(failed, result)
		}
	}

	return failed
}
