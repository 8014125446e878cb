package quota

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marketdesk/server/internal/domain"
)

func TestBackoffDelay(t *testing.T) {
	b := DefaultBackoff()
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for attempt, d := range want {
		assert.Equal(t, d, b.Delay(attempt), "attempt %d", attempt)
	}
	assert.Equal(t, 5*time.Second, b.Delay(40))
	assert.Equal(t, time.Second, b.Delay(-1))
}

func TestBackoffDelayWithoutMaxStaysCapped(t *testing.T) {
	b := Backoff{Base: 500 * time.Millisecond}
	assert.Equal(t, 500*time.Millisecond, b.Delay(0))
	assert.Equal(t, 5*time.Second, b.Delay(10))
	assert.Equal(t, 5*time.Second, b.Delay(200))

	opts := Options{Backoff: Backoff{Base: 2 * time.Second}}.withDefaults()
	assert.Equal(t, 2*time.Second, opts.Backoff.Base)
	assert.Equal(t, 5*time.Second, opts.Backoff.Max)

	opts = Options{Backoff: Backoff{Max: 3 * time.Second}}.withDefaults()
	assert.Equal(t, time.Second, opts.Backoff.Base)
	assert.Equal(t, 3*time.Second, opts.Backoff.Max)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "wrapped deadline", err: fmt.Errorf("increment: %w", context.DeadlineExceeded), want: true},
		{name: "cancelled", err: context.Canceled, want: false},
		{name: "transient sentinel", err: domain.ErrTransient, want: true},
		{name: "net error", err: &net.OpError{Op: "dial", Err: errors.New("refused")}, want: true},
		{name: "network text", err: errors.New("network request failed"), want: true},
		{name: "capitalised network text", err: errors.New("Network request failed"), want: false},
		{name: "upper case timeout text", err: errors.New("TIMEOUT"), want: false},
		{name: "abort text", err: errors.New("AbortError: the operation was aborted"), want: true},
		{name: "lower case abort text", err: errors.New("aborterror"), want: false},
		{name: "connection text", err: errors.New("connection reset"), want: true},
		{name: "timeout text", err: errors.New("i/o timeout"), want: true},
		{name: "unauthorized", err: domain.ErrUnauthorized, want: false},
		{name: "quota", err: domain.ErrQuotaExceeded, want: false},
		{name: "other", err: errors.New("syntax error at or near"), want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRetryable(tc.err))
		})
	}
}

func TestSleepContextHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
