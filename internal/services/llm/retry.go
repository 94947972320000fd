package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// retryPolicy retries rate limits, server errors, timeouts, and empty
// replies with doubling delays.
type retryPolicy struct {
	attempts int
	first    time.Duration
	ceiling  time.Duration
	sleep    func(time.Duration)
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{attempts: 5, first: time.Second, ceiling: 10 * time.Second}
}

// finalError marks an error that must not be retried.
type finalError struct{ err error }

func (e finalError) Error() string { return e.err.Error() }
func (e finalError) Unwrap() error { return e.err }

// do runs fn until it succeeds, returns a non-retryable error, or the attempt
// budget is spent.
func (p retryPolicy) do(ctx context.Context, op string, fn func() error) error {
	attempts := max(p.attempts, 1)
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		var final finalError
		if errors.As(err, &final) {
			return final.err
		}
		wait, ok := p.backoff(ctx, err, attempt)
		if !ok {
			return err
		}
		if attempt >= attempts {
			break
		}
		if waitErr := p.wait(ctx, wait); waitErr != nil {
			return waitErr
		}
	}
	if attempts == 1 {
		return err
	}
	return fmt.Errorf("%s: gave up after %d attempts: %w", op, attempts, err)
}

// backoff reports whether err is worth another try and how long to wait.
func (p retryPolicy) backoff(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var empty *noContentError
	if errors.As(err, &empty) {
		return p.delay(attempt), true
	}
	var status *statusError
	if errors.As(err, &status) {
		if status.code != http.StatusRequestTimeout && status.code != http.StatusTooManyRequests && status.code < 500 {
			return 0, false
		}
		if status.retryAfter > 0 {
			return p.capped(status.retryAfter), true
		}
		return p.delay(attempt), true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.delay(attempt), true
	}
	return 0, false
}

// delay doubles from first on every attempt: first, 2*first, 4*first, ...
func (p retryPolicy) delay(attempt int) time.Duration {
	if p.first <= 0 {
		return 0
	}
	d := p.first
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.ceiling > 0 && d >= p.ceiling {
			return p.ceiling
		}
	}
	return p.capped(d)
}

func (p retryPolicy) capped(d time.Duration) time.Duration {
	if p.ceiling > 0 && d > p.ceiling {
		return p.ceiling
	}
	return max(d, 0)
}

func (p retryPolicy) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if p.sleep != nil {
		p.sleep(d)
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter reads a Retry-After header in seconds or HTTP-date form.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, secs >= 0
	}
	when, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	if d := time.Until(when); d > 0 {
		return d, true
	}
	return 0, false
}
