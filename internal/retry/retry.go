// Package retry wraps fallible operations with classification-aware
// retry and exponential backoff. Non-retryable failures surface
// immediately; retryable ones back off up to a configured cap.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"FundEye/internal/failure"
)

// Config controls the backoff schedule. Immutable per Executor.
// MaxRetries counts retries, not attempts: 0 means exactly one attempt.
type Config struct {
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultConfig returns the stock schedule: up to 3 retries,
// 1s -> 2s -> 4s, capped at 10s.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// withDefaults fills zero-valued schedule fields. MaxRetries is left
// untouched because 0 is meaningful (single attempt).
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseDelay <= 0 {
		c.BaseDelay = d.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = d.MaxDelay
	}
	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = d.BackoffMultiplier
	}
	return c
}

// Executor runs operations under one retry policy. Terminal failures
// (non-retryable or retries exhausted) are recorded to the error history.
type Executor struct {
	cfg     Config
	history *failure.History
	log     zerolog.Logger

	// sleep suspends between attempts; replaced in tests.
	sleep func(context.Context, time.Duration) error
}

// NewExecutor creates an Executor. history may be nil when no
// diagnostic record is wanted.
func NewExecutor(cfg Config, history *failure.History, log zerolog.Logger) *Executor {
	return &Executor{
		cfg:     cfg.withDefaults(),
		history: history,
		log:     log.With().Str("component", "retry").Logger(),
		sleep:   sleepCtx,
	}
}

// Do runs op until it succeeds, fails non-retryably, or exhausts
// MaxRetries retryable failures. label names the operation in errors
// and logs.
func (e *Executor) Do(ctx context.Context, label string, op func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		cerr := failure.Classify(err)
		if !cerr.Retryable {
			e.record(cerr, attempt-1)
			return cerr
		}
		if attempt > e.cfg.MaxRetries {
			e.record(cerr, e.cfg.MaxRetries)
			return fmt.Errorf("%s: giving up after %d retries: %w", label, e.cfg.MaxRetries, cerr)
		}

		delay := e.backoff(attempt)
		e.log.Warn().
			Str("op", label).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Err(err).
			Msg("retryable failure, backing off")
		if werr := e.sleep(ctx, delay); werr != nil {
			return werr
		}
	}
}

// Do runs an operation returning a value through the executor's policy.
func Do[T any](ctx context.Context, e *Executor, label string, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := e.Do(ctx, label, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// backoff computes the delay before the next attempt after `failures`
// retryable failures: min(base * multiplier^(failures-1), max).
func (e *Executor) backoff(failures int) time.Duration {
	d := float64(e.cfg.BaseDelay) * math.Pow(e.cfg.BackoffMultiplier, float64(failures-1))
	if d > float64(e.cfg.MaxDelay) {
		return e.cfg.MaxDelay
	}
	return time.Duration(d)
}

func (e *Executor) record(cerr *failure.Error, retries int) {
	if e.history == nil {
		return
	}
	e.history.Record(cerr, retries)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
