// Package quota decides whether an actor may use a gated feature and records
// each use, either against the shared counter store or in demo-local state.
package quota

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/marketdesk/server/internal/domain"
	"github.com/marketdesk/server/internal/notice"
)

const (
	DefaultFreeLimit      = 5
	DefaultMaxRetries     = 3
	DefaultAttemptTimeout = 10 * time.Second
)

// Options tunes a Service. Zero fields fall back to the defaults.
type Options struct {
	FreeLimit      int
	MaxRetries     int
	AttemptTimeout time.Duration
	Backoff        Backoff
	Notifier       Notifier
	Logger         *zerolog.Logger
	Metrics        *Metrics
	// Sleep waits between attempts. Tests swap it to avoid real delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultOptions() Options {
	return Options{
		FreeLimit:      DefaultFreeLimit,
		MaxRetries:     DefaultMaxRetries,
		AttemptTimeout: DefaultAttemptTimeout,
		Backoff:        DefaultBackoff(),
	}
}

func (o Options) withDefaults() Options {
	if o.FreeLimit <= 0 {
		o.FreeLimit = DefaultFreeLimit
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = DefaultAttemptTimeout
	}
	if o.Backoff.Base <= 0 {
		o.Backoff.Base = DefaultBackoff().Base
	}
	if o.Backoff.Max <= 0 {
		o.Backoff.Max = DefaultBackoff().Max
	}
	if o.Notifier == nil {
		o.Notifier = discardNotifier{}
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
	return o
}

// Service tracks one actor's feature usage for the lifetime of a session.
// All methods are safe for concurrent use.
type Service struct {
	backend CounterBackend
	opts    Options
	log     zerolog.Logger

	mu       sync.RWMutex
	counters domain.UsageCounters
	tier     domain.SubscriptionTier

	loading  atomic.Bool
	inflight singleflight.Group
}

// NewService builds a Service over an explicit backend. It starts in the
// loading state with zero counters on the free tier until Initialize runs.
func NewService(backend CounterBackend, opts Options) *Service {
	opts = opts.withDefaults()
	s := &Service{
		backend:  backend,
		opts:     opts,
		log:      opts.Logger.With().Str("component", "quota").Str("mode", string(backend.Mode())).Logger(),
		counters: domain.NewUsageCounters(),
		tier:     domain.FreeTier(),
	}
	s.loading.Store(true)
	return s
}

// NewForSession picks the backend from the session mode.
func NewForSession(session domain.ActorSession, store domain.CounterStore, local domain.LocalStateStore, opts Options) (*Service, error) {
	opts = opts.withDefaults()
	switch session.Mode {
	case domain.SessionLocalDemo:
		if session.DemoID == "" {
			return nil, errors.New("quota: demo session has no id")
		}
		if local == nil {
			return nil, errors.New("quota: no local state store for demo session")
		}
		return NewService(NewDemoBackend(local, session.DemoID, *opts.Logger), opts), nil
	case domain.SessionRemote:
		if session.Identity == "" {
			return nil, domain.ErrUnauthorized
		}
		if store == nil {
			return nil, errors.New("quota: no counter store configured")
		}
		return NewService(NewRemoteBackend(store, session.Identity), opts), nil
	default:
		return nil, errors.New("quota: unknown session mode")
	}
}

// Mode returns the session mode of the backing store.
func (s *Service) Mode() domain.SessionMode { return s.backend.Mode() }

// Limit returns the per-feature allowance for non-unlimited actors.
func (s *Service) Limit() int { return s.opts.FreeLimit }

// Loading reports whether Initialize has not yet completed.
func (s *Service) Loading() bool { return s.loading.Load() }

// Initialize loads counters and tier from the backend. Failures are logged and
// leave zero counters on the free tier; Loading is false afterwards either way.
func (s *Service) Initialize(ctx context.Context) {
	s.loading.Store(true)
	defer s.loading.Store(false)

	counters, tier, err := s.backend.Load(ctx)
	if counters == nil {
		counters = domain.NewUsageCounters()
	}

	s.mu.Lock()
	s.counters = counters.Normalize()
	s.tier = tier
	s.mu.Unlock()

	s.opts.Metrics.initialized(s.backend.Mode(), err == nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("load usage state failed, using defaults")
		return
	}
	s.log.Debug().
		Str("tier", string(tier.Kind)).
		Str("status", string(tier.Status)).
		Msg("usage state loaded")
}

// Tier returns the current subscription tier.
func (s *Service) Tier() domain.SubscriptionTier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tier
}

// Counters returns a copy of the in-memory counters.
func (s *Service) Counters() domain.UsageCounters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters.Clone()
}

func (s *Service) CanUseFeature(f domain.FeatureKind) bool {
	if !f.Valid() {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tier.Unlimited() || s.counters.Get(f) < s.opts.FreeLimit
}

// RemainingUsage returns -1 for unlimited actors.
func (s *Service) RemainingUsage(f domain.FeatureKind) int {
	if !f.Valid() {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tier.Unlimited() {
		return -1
	}
	return max(0, s.opts.FreeLimit-s.counters.Get(f))
}

// UsagePercentage returns the share of the allowance consumed, in [0, 100].
// Unlimited actors always report 0.
func (s *Service) UsagePercentage(f domain.FeatureKind) float64 {
	if !f.Valid() {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tier.Unlimited() {
		return 0
	}
	pct := float64(s.counters.Get(f)) / float64(s.opts.FreeLimit) * 100
	return min(100, max(0, pct))
}

// IncrementUsage records one use of f. It returns false, after emitting exactly
// one notice, when the quota is exhausted or the store keeps failing.
//
// Concurrent calls for the same feature share a single store increment, which
// runs under the context of the call that started it. A joining call that sees
// its own ctx end first returns false with a transient notice; otherwise it
// takes the shared result, including a failure caused by the first caller's
// ctx ending. Every call that returns false notifies on its own.
func (s *Service) IncrementUsage(ctx context.Context, f domain.FeatureKind) bool {
	log := s.log.With().Str("feature", string(f)).Logger()
	if !f.Valid() {
		s.opts.Metrics.outcome(f, OutcomeUnknownFeature)
		s.opts.Notifier.Notify(notice.Notice{Kind: notice.KindUnknownFeature, Feature: f})
		return false
	}

	ch := s.inflight.DoChan(string(f), func() (any, error) {
		return s.increment(ctx, log, f), nil
	})
	var res incrementResult
	select {
	case r := <-ch:
		res = r.Val.(incrementResult)
	case <-ctx.Done():
		select {
		case r := <-ch:
			res = r.Val.(incrementResult)
		default:
			res = incrementResult{outcome: OutcomeTransient, kind: notice.KindTransient, err: ctx.Err()}
		}
	}

	if res.ok {
		s.opts.Metrics.outcome(f, OutcomeOK)
		return true
	}
	s.fail(log, f, res)
	return false
}

type incrementResult struct {
	ok       bool
	outcome  Outcome
	kind     notice.Kind
	attempts int
	err      error
}

func (s *Service) increment(ctx context.Context, log zerolog.Logger, f domain.FeatureKind) incrementResult {
	remote := s.backend.Mode() == domain.SessionRemote

	for attempt := 0; ; attempt++ {
		if !s.CanUseFeature(f) {
			return incrementResult{outcome: OutcomeQuotaExceeded, kind: notice.KindQuotaExceeded, attempts: attempt}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.opts.AttemptTimeout)
		start := time.Now()
		err := s.backend.Increment(callCtx, f)
		cancel()
		if remote {
			s.opts.Metrics.attempt(f, time.Since(start))
		}

		if err == nil {
			s.mu.Lock()
			s.counters.Inc(f)
			s.mu.Unlock()
			return incrementResult{ok: true, attempts: attempt + 1}
		}

		retryable := IsRetryable(err)
		if retryable && attempt < s.opts.MaxRetries {
			delay := s.opts.Backoff.Delay(attempt)
			log.Debug().Err(err).
				Int("attempt", attempt+1).
				Dur("backoff", delay).
				Msg("usage increment failed, retrying")
			if serr := s.opts.Sleep(ctx, delay); serr != nil {
				return incrementResult{outcome: OutcomeTransient, kind: notice.KindTransient, attempts: attempt + 1, err: serr}
			}
			continue
		}

		outcome, kind := classifyFailure(err, retryable)
		return incrementResult{outcome: outcome, kind: kind, attempts: attempt + 1, err: err}
	}
}

func (s *Service) fail(log zerolog.Logger, f domain.FeatureKind, res incrementResult) {
	s.opts.Metrics.outcome(f, res.outcome)
	ev := log.Info()
	if res.outcome != OutcomeQuotaExceeded {
		ev = log.Warn().Err(res.err)
	}
	ev.Str("outcome", string(res.outcome)).Int("attempts", res.attempts).Msg("usage increment rejected")
	s.opts.Notifier.Notify(notice.Notice{Kind: res.kind, Feature: f, Attempts: res.attempts})
}
