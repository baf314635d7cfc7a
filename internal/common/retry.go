package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Veraticus/envelope/internal/service"
)

var (
	// ErrRateLimit means the remote service asked us to slow down.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries means every attempt failed.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError tags an error with whether another attempt could succeed.
// Wait, when set, is the server's hint for the next attempt.
type RetryableError struct {
	Err       error
	Wait      time.Duration
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Permanent marks err as final. WithRetry returns it without another attempt.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Transient marks err as worth retrying, after wait if it is positive.
func Transient(err error, wait time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, Wait: wait, Retryable: true}
}

func normalize(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier < 1 {
		opts.Multiplier = 2.0
	}
	return opts
}

// WithRetry runs operation until it succeeds, returns a permanent error, the
// attempts run out or ctx is done. Delays grow exponentially with up to 20%
// jitter and never exceed MaxDelay; a rate limit waits the full MaxDelay
// unless the error carries its own hint.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	opts = normalize(opts)
	backoff := opts.InitialDelay

	var err error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if err = operation(); err == nil {
			return nil
		}

		var tagged *RetryableError
		isTagged := errors.As(err, &tagged)
		if isTagged && !tagged.Retryable {
			return err
		}
		if attempt == opts.MaxAttempts {
			break
		}

		wait := backoff + time.Duration(rand.Int64N(int64(backoff)/5+1))
		switch {
		case isTagged && tagged.Wait > 0:
			wait = tagged.Wait
		case errors.Is(err, ErrRateLimit):
			wait = opts.MaxDelay
		}
		wait = min(wait, opts.MaxDelay)

		slog.Warn("operation failed, retrying",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(time.Duration(float64(backoff)*opts.Multiplier), opts.MaxDelay)
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, opts.MaxAttempts, err)
}
