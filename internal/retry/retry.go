// Package retry wraps translation calls in a bounded retry loop with
// exponential backoff. Each segment's lifecycle is an explicit state
// machine: Pending → Attempting → {Succeeded, Retrying, Failed}, with
// an auth failure detouring through a credential refresh before the
// next attempt.
package retry

import (
	"context"
	"time"

	"github.com/valpere/pdftran/internal/creds"
	"github.com/valpere/pdftran/internal/translator"
)

// State of one segment's retry lifecycle.
type State int

const (
	StatePending State = iota
	StateAttempting
	StateRetrying
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAttempting:
		return "attempting"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CredentialSource supplies credential snapshots and serialized
// refreshes. *creds.Store implements it.
type CredentialSource interface {
	Snapshot() creds.Credentials
	Refresh(ctx context.Context) (creds.Credentials, error)
}

type Config struct {
	MaxAttempts int           // total attempts including the first (default 5)
	BaseDelay   time.Duration // first backoff delay (default 500ms)
	MaxDelay    time.Duration // backoff cap (default 30s)
}

type Controller struct {
	cfg   Config
	creds CredentialSource
}

func New(source CredentialSource, cfg Config) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	return &Controller{cfg: cfg, creds: source}
}

// action is the transition chosen after a failed attempt.
type action int

const (
	actionFail action = iota
	actionRetry
	actionRefresh
)

// decide picks the next transition from the error classification, the
// attempt count, and whether a credential refresh already happened in
// this segment's lifecycle. Pure function, attempt is zero-based.
func decide(err error, attempt, maxAttempts int, refreshed bool) action {
	switch translator.KindOf(err) {
	case translator.KindAuth:
		if refreshed {
			return actionFail
		}
		return actionRefresh
	case translator.KindRateLimit, translator.KindTransient:
		if attempt >= maxAttempts-1 {
			return actionFail
		}
		return actionRetry
	default:
		return actionFail
	}
}

// Backoff returns the delay before retry number attempt (zero-based):
// BaseDelay * 2^attempt, capped at MaxDelay.
func (c *Controller) Backoff(attempt int) time.Duration {
	d := c.cfg.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= c.cfg.MaxDelay {
			return c.cfg.MaxDelay
		}
	}
	if d > c.cfg.MaxDelay {
		return c.cfg.MaxDelay
	}
	return d
}

// AttemptFunc performs one translation attempt with the given
// credential snapshot.
type AttemptFunc func(ctx context.Context, cr creds.Credentials) (string, error)

// Do drives fn through the state machine until it succeeds, fails
// permanently, exhausts the attempt budget, or the context is
// cancelled. Retrying the same input is safe: translation is a pure
// function of text and language pair, so repeated attempts cannot
// accumulate side effects.
func (c *Controller) Do(ctx context.Context, fn AttemptFunc) (string, error) {
	cr := c.creds.Snapshot()
	refreshed := false
	var lastErr error

	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		// StateAttempting
		out, err := fn(ctx, cr)
		if err == nil {
			// StateSucceeded
			return out, nil
		}
		lastErr = err

		switch decide(err, attempt, c.cfg.MaxAttempts, refreshed) {
		case actionRefresh:
			fresh, refreshErr := c.creds.Refresh(ctx)
			if refreshErr != nil {
				// StateFailed: refresh itself failed, surface the auth error.
				return "", lastErr
			}
			cr = fresh
			refreshed = true

		case actionRetry:
			// StateRetrying
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.Backoff(attempt)):
			}
			cr = c.creds.Snapshot()

		case actionFail:
			// StateFailed
			return "", lastErr
		}
	}

	// StateFailed: attempt budget exhausted.
	return "", lastErr
}
