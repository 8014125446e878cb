package quota

import (
	"context"
	"sync"
	"time"

	"github.com/marketdesk/server/internal/domain"
)

type fakeStore struct {
	mu sync.Mutex

	counters    domain.UsageCounters
	countersErr error
	tier        domain.SubscriptionTier
	tierErr     error

	// incErrs is consumed one entry per IncrementCounter call; once empty, incErr applies.
	incErrs []error
	incErr  error
	// block, when set, holds IncrementCounter until it is closed or ctx ends.
	block   chan struct{}
	entered chan struct{}

	reads     int
	incCalls  int
	deadlines []bool
}

func newFakeStore(tier domain.SubscriptionTier, counters domain.UsageCounters) *fakeStore {
	return &fakeStore{tier: tier, counters: counters}
}

func (s *fakeStore) ReadCounters(_ context.Context, _ string) (domain.UsageCounters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.countersErr != nil {
		return nil, s.countersErr
	}
	return s.counters.Clone(), nil
}

func (s *fakeStore) ReadSubscription(_ context.Context, _ string) (domain.SubscriptionTier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.tierErr != nil {
		return domain.SubscriptionTier{}, s.tierErr
	}
	return s.tier, nil
}

func (s *fakeStore) IncrementCounter(ctx context.Context, _ string, feature domain.FeatureKind) error {
	s.mu.Lock()
	s.incCalls++
	_, hasDeadline := ctx.Deadline()
	s.deadlines = append(s.deadlines, hasDeadline)
	block, entered := s.block, s.entered
	var err error
	if len(s.incErrs) > 0 {
		err = s.incErrs[0]
		s.incErrs = s.incErrs[1:]
	} else {
		err = s.incErr
	}
	s.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.counters == nil {
		s.counters = domain.NewUsageCounters()
	}
	s.counters.Inc(feature)
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incCalls
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func (r *sleepRecorder) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.delays))
	copy(out, r.delays)
	return out
}

type fakeLocal struct {
	mu      sync.Mutex
	saved   map[string]domain.UsageCounters
	loadErr error
	incErr  error
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{saved: make(map[string]domain.UsageCounters)}
}

func (l *fakeLocal) LoadCounters(_ context.Context, sessionID string) (domain.UsageCounters, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	c, ok := l.saved[sessionID]
	if !ok {
		return domain.NewUsageCounters(), nil
	}
	return c.Clone(), nil
}

func (l *fakeLocal) IncrementCounter(_ context.Context, sessionID string, feature domain.FeatureKind) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.incErr != nil {
		return l.incErr
	}
	c, ok := l.saved[sessionID]
	if !ok {
		c = domain.NewUsageCounters()
		l.saved[sessionID] = c
	}
	c.Inc(feature)
	return nil
}
