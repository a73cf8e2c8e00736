// Package retry runs an attempt function with a bounded number of tries and a
// linearly growing, capped delay between them.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// ErrPanic wraps a panic raised inside an attempt.
var ErrPanic = errors.New("attempt panicked")

// Policy bounds an attempt sequence.
type Policy struct {
	MaxAttempts int
	// Step is multiplied by the attempt number to get the delay before the next try.
	Step     time.Duration
	MaxDelay time.Duration
}

// DefaultPolicy returns 4 attempts with delays of 0.6s, 1.2s and 1.8s (capped at 2s).
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		Step:        600 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// Delay returns the wait after the given 1-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	d := time.Duration(attempt) * p.Step
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Permanent marks err so that Run returns it without further attempts.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// LinearBackOff implements backoff.BackOff with delays of Step·n capped at Max.
type LinearBackOff struct {
	policy Policy
	n      int
}

// NewLinearBackOff creates a LinearBackOff for p.
func NewLinearBackOff(p Policy) *LinearBackOff {
	return &LinearBackOff{policy: p}
}

// NextBackOff implements backoff.BackOff.
func (b *LinearBackOff) NextBackOff() time.Duration {
	b.n++
	return b.policy.Delay(b.n)
}

// Reset implements backoff.BackOff.
func (b *LinearBackOff) Reset() {
	b.n = 0
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimer replaces the wall-clock timer used between attempts.
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(c *Controller) {
		c.newTimer = newTimer
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller runs attempt sequences. It holds no per-run state and can be
// reused, but each Run is sequential.
type Controller struct {
	policy   Policy
	newTimer func() backoff.Timer
	logger   *slog.Logger
}

// New creates a Controller. Non-positive policy fields fall back to DefaultPolicy.
func New(p Policy, opts ...Option) *Controller {
	def := DefaultPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.Step <= 0 {
		p.Step = def.Step
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}

	c := &Controller{policy: p, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the effective policy.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Run calls fn until it returns nil, returns a Permanent error, ctx is done,
// or MaxAttempts calls have failed. It returns nil on success and otherwise
// the error of the last attempt. Panics in fn are converted to errors.
func (c *Controller) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	sequence := uuid.New().String()
	logger := c.logger.With("sequence", sequence)

	attempt := 0
	operation := func() error {
		attempt++
		logger.Debug("Starting attempt", "attempt", attempt, "max_attempts", c.policy.MaxAttempts)
		err := safeCall(ctx, fn)
		if err != nil {
			logger.Info("Attempt failed", "attempt", attempt, "error", err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Debug("Waiting before next attempt", "attempt", attempt, "wait", wait)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(NewLinearBackOff(c.policy), uint64(c.policy.MaxAttempts-1)),
		ctx,
	)

	var timer backoff.Timer
	if c.newTimer != nil {
		timer = c.newTimer()
	}

	err := backoff.RetryNotifyWithTimer(operation, b, notify, timer)
	if err != nil {
		logger.Warn("Attempt sequence failed", "attempts", attempt, "error", err)
		return err
	}
	logger.Debug("Attempt sequence succeeded", "attempts", attempt)
	return nil
}

func safeCall(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn(ctx)
}
