package domain

import "context"

// CounterStore is the remote, shared persistence for per-actor usage.
// IncrementCounter must be atomic on the store side.
type CounterStore interface {
	ReadCounters(ctx context.Context, identity string) (UsageCounters, error)
	ReadSubscription(ctx context.Context, identity string) (SubscriptionTier, error)
	IncrementCounter(ctx context.Context, identity string, feature FeatureKind) error
}

// SubscriptionWriter is implemented by stores that accept plan changes from admin tooling.
type SubscriptionWriter interface {
	WriteSubscription(ctx context.Context, identity string, tier SubscriptionTier) error
}

// CounterResetter is implemented by stores that can zero counters.
// A nil feature resets every feature.
type CounterResetter interface {
	ResetCounters(ctx context.Context, identity string, feature *FeatureKind) error
}

// LocalStateStore persists demo-session counters on the local host.
// IncrementCounter must be atomic with respect to other callers of the same store.
type LocalStateStore interface {
	LoadCounters(ctx context.Context, sessionID string) (UsageCounters, error)
	IncrementCounter(ctx context.Context, sessionID string, feature FeatureKind) error
}
