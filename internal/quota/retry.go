package quota

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/marketdesk/server/internal/domain"
)

// Backoff computes the wait before retry attempt+1: Base * 2^attempt, capped at Max.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff waits 1s, 2s, 4s, then 5s for every later attempt.
func DefaultBackoff() Backoff {
	return Backoff{Base: time.Second, Max: 5 * time.Second}
}

// Delay returns the wait after a failed attempt. A zero Base or Max falls back to the default.
func (b Backoff) Delay(attempt int) time.Duration {
	base, maxDelay := b.Base, b.Max
	if base <= 0 {
		base = DefaultBackoff().Base
	}
	if maxDelay <= 0 {
		maxDelay = DefaultBackoff().Max
	}
	delay := base
	for i := 0; i < attempt && delay < maxDelay; i++ {
		delay *= 2
	}
	return min(delay, maxDelay)
}

// Matched case-sensitively against the error text.
var retryableFragments = []string{"network", "timeout", "AbortError", "connection"}

// IsRetryable reports whether a failed store call is worth repeating. Quota,
// auth and validation errors are final; deadlines, network errors and any
// error whose text contains one of retryableFragments are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrQuotaExceeded),
		errors.Is(err, domain.ErrUnknownFeature),
		errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, domain.ErrTransient):
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
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
