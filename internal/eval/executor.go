// Package eval runs persona evaluations: a bounded-concurrency executor
// that issues one remote call per record, plus accuracy and wrong-example
// sampling over the results.
package eval

import (
	"context"
	"sync"
	"time"

	"github.com/Harshitk-cp/soulbench/internal/domain"
	"github.com/Harshitk-cp/soulbench/internal/parse"
	"github.com/Harshitk-cp/soulbench/internal/prompt"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Options bound the executor's remote-call behavior. The numbers are
// configuration, not semantics: MaxRetries counts additional attempts
// after the first, and RetryDelay is a fixed pause between attempts.
type Options struct {
	MaxConcurrent int
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
}

// DefaultOptions mirror the defaults the experiment scripts always ran with.
func DefaultOptions() Options {
	return Options{
		MaxConcurrent: 50,
		Timeout:       150 * time.Second,
		MaxRetries:    3,
		RetryDelay:    500 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = d.MaxConcurrent
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	return o
}

// Runner evaluates record batches against a chat model.
type Runner struct {
	client domain.ChatClient
	model  string
	opts   Options
	logger *zap.Logger

	// onProgress, when set, observes the monotone completed count.
	onProgress func(done, total int)
}

func NewRunner(client domain.ChatClient, model string, opts Options, logger *zap.Logger) *Runner {
	return &Runner{
		client: client,
		model:  model,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// OnProgress registers a progress observer. Calls are serialized and the
// reported count only increases. Must be set before Evaluate.
func (r *Runner) OnProgress(fn func(done, total int)) {
	r.onProgress = fn
}

// Evaluate runs one remote call per record under the configured
// concurrency ceiling and writes verdicts back by original index, so the
// returned slice has the input's length and order regardless of
// completion order. Records whose every attempt failed keep a nil
// prediction; per-record failure never aborts siblings. The input slice
// is not mutated.
func (r *Runner) Evaluate(ctx context.Context, records []domain.Record, systemPrompt string) []domain.Record {
	out := make([]domain.Record, len(records))
	copy(out, records)

	sem := semaphore.NewWeighted(int64(r.opts.MaxConcurrent))

	var wg sync.WaitGroup
	var progressMu sync.Mutex
	done := 0

	for i := range out {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			verdict, reasoning := r.evaluateOne(ctx, sem, systemPrompt, out[idx], idx)
			// Index-disjoint write; no lock needed.
			out[idx].Prediction = verdict
			out[idx].Reasoning = reasoning

			progressMu.Lock()
			done++
			if r.onProgress != nil {
				r.onProgress(done, len(out))
			}
			progressMu.Unlock()
		}(i)
	}

	wg.Wait()
	return out
}

// evaluateOne runs the bounded retry loop for a single record. The
// semaphore is held for the remote call only, so a record sleeping
// between attempts does not occupy an executor slot.
func (r *Runner) evaluateOne(ctx context.Context, sem *semaphore.Weighted, systemPrompt string, rec domain.Record, idx int) (*bool, string) {
	req := domain.ChatRequest{
		Model: r.model,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: systemPrompt},
			{Role: domain.RoleUser, Content: prompt.User(rec.Question, rec.Claim())},
		},
	}

	attempts := r.opts.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		verdict, reasoning, err := r.attempt(ctx, sem, req)
		if verdict != nil {
			return verdict, reasoning
		}
		lastErr = err

		if attempt < attempts {
			r.logger.Warn("record attempt failed",
				zap.Int("record", idx),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if !sleep(ctx, r.opts.RetryDelay) {
				break
			}
		}
	}

	r.logger.Error("record failed permanently",
		zap.Int("record", idx),
		zap.Int("attempts", attempts),
		zap.Error(lastErr))
	return nil, ""
}

// attempt issues one remote call under the per-call deadline. Transport
// failure, deadline expiry, and an unparseable reply are all retryable;
// the last is reported as errNoVerdict to keep the two causes distinct
// in logs.
func (r *Runner) attempt(ctx context.Context, sem *semaphore.Weighted, req domain.ChatRequest) (*bool, string, error) {
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	content, err := r.client.Complete(callCtx, req)
	cancel()
	sem.Release(1)

	if err != nil {
		return nil, "", err
	}

	verdict, reasoning := parse.Verdict(content)
	if verdict == nil {
		return nil, "", errNoVerdict
	}
	return verdict, reasoning, nil
}

// sleep waits for d, returning false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
