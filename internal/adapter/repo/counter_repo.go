package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marketdesk/server/internal/domain"
	"github.com/marketdesk/server/internal/infra"
	"github.com/marketdesk/server/internal/middleware"
	"github.com/marketdesk/server/internal/sqlinline"
)

const eventCounterReset = "COUNTER_RESET"

// CounterRepositoryPG implements domain.CounterStore backed by PostgreSQL.
type CounterRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewCounterRepository creates a new CounterRepositoryPG.
func NewCounterRepository(sql infra.SQLExecutor) *CounterRepositoryPG {
	return &CounterRepositoryPG{sql: sql}
}

// ReadCounters loads every stored counter for identity. No rows yields domain.ErrNotFound.
func (r *CounterRepositoryPG) ReadCounters(ctx context.Context, identity string) (domain.UsageCounters, error) {
	identity, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}
	rows, err := r.sql.Query(ctx, sqlinline.QSelectFeatureUsage, identity)
	if err != nil {
		return nil, fmt.Errorf("read counters: %w", err)
	}
	defer rows.Close()

	counters := domain.NewUsageCounters()
	found := false
	for rows.Next() {
		var feature string
		var used int
		if err := rows.Scan(&feature, &used); err != nil {
			return nil, fmt.Errorf("scan counter: %w", err)
		}
		found = true
		f, err := domain.ParseFeature(feature)
		if err != nil {
			// rows for retired generators are ignored
			continue
		}
		counters[f] = used
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counters: %w", err)
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return counters.Normalize(), nil
}

// ReadSubscription loads the plan for identity. No row yields domain.ErrNotFound.
func (r *CounterRepositoryPG) ReadSubscription(ctx context.Context, identity string) (domain.SubscriptionTier, error) {
	identity, err := requireIdentity(identity)
	if err != nil {
		return domain.SubscriptionTier{}, err
	}
	var tier, status string
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectSubscription, identity).Scan(&tier, &status); err != nil {
		if infra.IsNoRows(err) {
			return domain.SubscriptionTier{}, domain.ErrNotFound
		}
		return domain.SubscriptionTier{}, fmt.Errorf("read subscription: %w", err)
	}
	return domain.SubscriptionTier{
		Kind:   domain.ParseTierKind(tier),
		Status: domain.ParseSubscriptionStatus(status),
	}, nil
}

// IncrementCounter atomically adds one use and records a usage event.
func (r *CounterRepositoryPG) IncrementCounter(ctx context.Context, identity string, feature domain.FeatureKind) error {
	identity, err := requireIdentity(identity)
	if err != nil {
		return err
	}
	if !feature.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFeature, feature)
	}
	var used int
	requestID := middleware.RequestIDFromContext(ctx)
	if err := r.sql.QueryRow(ctx, sqlinline.QIncrementFeatureUsage, identity, string(feature), requestID).Scan(&used); err != nil {
		return fmt.Errorf("increment counter: %w", err)
	}
	return nil
}

// WriteSubscription stores the plan for identity.
func (r *CounterRepositoryPG) WriteSubscription(ctx context.Context, identity string, tier domain.SubscriptionTier) error {
	identity, err := requireIdentity(identity)
	if err != nil {
		return err
	}
	var storedTier, storedStatus string
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertSubscription, identity, string(tier.Kind), string(tier.Status))
	if err := row.Scan(&storedTier, &storedStatus); err != nil {
		return fmt.Errorf("write subscription: %w", err)
	}
	return nil
}

// ResetCounters zeroes one feature, or all of them when feature is nil, and
// records a COUNTER_RESET usage event.
func (r *CounterRepositoryPG) ResetCounters(ctx context.Context, identity string, feature *domain.FeatureKind) error {
	identity, err := requireIdentity(identity)
	if err != nil {
		return err
	}
	var target any
	scope := "all"
	if feature != nil {
		target = string(*feature)
		scope = string(*feature)
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QResetFeatureUsage, identity, target); err != nil {
		return fmt.Errorf("reset counters: %w", err)
	}

	props, err := json.Marshal(map[string]string{"feature": scope})
	if err != nil {
		return fmt.Errorf("encode reset event: %w", err)
	}
	requestID := middleware.RequestIDFromContext(ctx)
	if _, err := r.sql.Exec(ctx, sqlinline.QInsertUsageEvent, identity, requestID, eventCounterReset, true, 0, string(props)); err != nil {
		return fmt.Errorf("record reset event: %w", err)
	}
	return nil
}

func requireIdentity(identity string) (string, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", domain.ErrUnauthorized
	}
	return identity, nil
}

var (
	_ domain.CounterStore       = (*CounterRepositoryPG)(nil)
	_ domain.SubscriptionWriter = (*CounterRepositoryPG)(nil)
	_ domain.CounterResetter    = (*CounterRepositoryPG)(nil)
)
