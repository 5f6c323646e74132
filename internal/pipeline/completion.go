package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Completer is the text-generation capability the pipeline depends on.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// RetryingCompleter wraps a Completer with bounded retry. Rate-limited
// attempts back off on a longer schedule than other transient failures; the
// final attempt's error is propagated unmodified inside the classified error.
type RetryingCompleter struct {
	Inner       Completer
	MaxAttempts int
	// RateLimitDelay and TransientDelay are the base delays; attempt n waits
	// n times the base. Overridable so tests do not sleep for real.
	RateLimitDelay time.Duration
	TransientDelay time.Duration
}

// NewRetryingCompleter applies the default retry policy: three attempts,
// 2s/4s after rate limits, 1s/2s after other failures.
func NewRetryingCompleter(inner Completer) *RetryingCompleter {
	return &RetryingCompleter{
		Inner:          inner,
		MaxAttempts:    3,
		RateLimitDelay: 2 * time.Second,
		TransientDelay: time.Second,
	}
}

func (r *RetryingCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := r.Inner.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		delay := r.TransientDelay * time.Duration(attempt)
		if isRateLimited(err) {
			delay = r.RateLimitDelay * time.Duration(attempt)
			slog.Warn("Completion rate limited, backing off.", "attempt", attempt, "delay", delay)
		} else {
			slog.Warn("Completion attempt failed, retrying.", "attempt", attempt, "delay", delay, "error", err)
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return "", E(KindUpstreamUnavailable, "completion aborted while backing off", err)
		}
	}
	return "", E(KindUpstreamUnavailable, fmt.Sprintf("completion failed after %d attempts", attempts), lastErr)
}

func isRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
