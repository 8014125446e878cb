package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/marketdesk/server/internal/domain"
)

// CounterBackend is where a Service loads its state from and records increments to.
// The backend is chosen once, when the Service is built, from the session mode.
type CounterBackend interface {
	Mode() domain.SessionMode
	// Load returns the starting counters and tier. On failure it still returns
	// usable defaults alongside the error.
	Load(ctx context.Context) (domain.UsageCounters, domain.SubscriptionTier, error)
	// Increment records one use of feature on the backing store.
	Increment(ctx context.Context, feature domain.FeatureKind) error
}

// RemoteBackend talks to the shared counter store on behalf of one identity.
type RemoteBackend struct {
	store    domain.CounterStore
	identity string
}

func NewRemoteBackend(store domain.CounterStore, identity string) *RemoteBackend {
	return &RemoteBackend{store: store, identity: identity}
}

func (b *RemoteBackend) Mode() domain.SessionMode { return domain.SessionRemote }

// Load issues the counter and subscription reads concurrently. A missing record
// yields its default; any other failure resets both to zero counters on the free tier.
func (b *RemoteBackend) Load(ctx context.Context) (domain.UsageCounters, domain.SubscriptionTier, error) {
	counters := domain.NewUsageCounters()
	tier := domain.FreeTier()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := b.store.ReadCounters(gctx, b.identity)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil
		case err != nil:
			return fmt.Errorf("read counters: %w", err)
		}
		counters = c.Normalize()
		return nil
	})
	g.Go(func() error {
		t, err := b.store.ReadSubscription(gctx, b.identity)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil
		case err != nil:
			return fmt.Errorf("read subscription: %w", err)
		}
		tier = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.NewUsageCounters(), domain.FreeTier(), err
	}
	return counters, tier, nil
}

func (b *RemoteBackend) Increment(ctx context.Context, feature domain.FeatureKind) error {
	return b.store.IncrementCounter(ctx, b.identity, feature)
}

// DemoBackend keeps a demo session's counters in host-local storage. Demo
// sessions always run on an active premium tier.
type DemoBackend struct {
	local     domain.LocalStateStore
	sessionID string
	logger    zerolog.Logger
}

func NewDemoBackend(local domain.LocalStateStore, sessionID string, logger zerolog.Logger) *DemoBackend {
	return &DemoBackend{local: local, sessionID: sessionID, logger: logger}
}

func (b *DemoBackend) Mode() domain.SessionMode { return domain.SessionLocalDemo }

func (b *DemoBackend) Load(ctx context.Context) (domain.UsageCounters, domain.SubscriptionTier, error) {
	counters, err := b.local.LoadCounters(ctx, b.sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewUsageCounters(), domain.PremiumActive(), nil
		}
		return domain.NewUsageCounters(), domain.PremiumActive(), fmt.Errorf("load demo counters: %w", err)
	}
	return counters.Normalize(), domain.PremiumActive(), nil
}

// Increment bumps the stored counter in place, so services sharing a demo
// session never overwrite each other. A failed write is logged and otherwise
// ignored: the in-memory count still advances.
func (b *DemoBackend) Increment(ctx context.Context, feature domain.FeatureKind) error {
	if err := b.local.IncrementCounter(ctx, b.sessionID, feature); err != nil {
		b.logger.Warn().Err(err).
			Str("session_id", b.sessionID).
			Str("feature", string(feature)).
			Msg("persist demo usage failed")
	}
	return nil
}
