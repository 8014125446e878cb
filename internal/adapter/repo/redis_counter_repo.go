package repo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/marketdesk/server/internal/domain"
)

const defaultRedisKeyPrefix = "usage:"

// CounterRepositoryRedis implements domain.CounterStore on Redis hashes.
// HINCRBY gives the store-side atomicity the quota pipeline relies on.
type CounterRepositoryRedis struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisCounterRepository creates a repository using the default key prefix.
func NewRedisCounterRepository(client redis.Cmdable) *CounterRepositoryRedis {
	return &CounterRepositoryRedis{client: client, keyPrefix: defaultRedisKeyPrefix}
}

func (r *CounterRepositoryRedis) countersKey(identity string) string {
	return r.keyPrefix + "counters:" + identity
}

func (r *CounterRepositoryRedis) subscriptionKey(identity string) string {
	return r.keyPrefix + "subscription:" + identity
}

func (r *CounterRepositoryRedis) ReadCounters(ctx context.Context, identity string) (domain.UsageCounters, error) {
	identity, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}
	fields, err := r.client.HGetAll(ctx, r.countersKey(identity)).Result()
	if err != nil {
		return nil, fmt.Errorf("read counters: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrNotFound
	}
	return parseCounterFields(fields)
}

func (r *CounterRepositoryRedis) ReadSubscription(ctx context.Context, identity string) (domain.SubscriptionTier, error) {
	identity, err := requireIdentity(identity)
	if err != nil {
		return domain.SubscriptionTier{}, err
	}
	fields, err := r.client.HGetAll(ctx, r.subscriptionKey(identity)).Result()
	if err != nil {
		return domain.SubscriptionTier{}, fmt.Errorf("read subscription: %w", err)
	}
	if len(fields) == 0 {
		return domain.SubscriptionTier{}, domain.ErrNotFound
	}
	return domain.SubscriptionTier{
		Kind:   domain.ParseTierKind(fields["tier"]),
		Status: domain.ParseSubscriptionStatus(fields["status"]),
	}, nil
}

func (r *CounterRepositoryRedis) IncrementCounter(ctx context.Context, identity string, feature domain.FeatureKind) error {
	identity, err := requireIdentity(identity)
	if err != nil {
		return err
	}
	if !feature.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFeature, feature)
	}
	if err := r.client.HIncrBy(ctx, r.countersKey(identity), string(feature), 1).Err(); err != nil {
		return fmt.Errorf("increment counter: %w", err)
	}
	return nil
}

func (r *CounterRepositoryRedis) WriteSubscription(ctx context.Context, identity string, tier domain.SubscriptionTier) error {
	identity, err := requireIdentity(identity)
	if err != nil {
		return err
	}
	err = r.client.HSet(ctx, r.subscriptionKey(identity), "tier", string(tier.Kind), "status", string(tier.Status)).Err()
	if err != nil {
		return fmt.Errorf("write subscription: %w", err)
	}
	return nil
}

func (r *CounterRepositoryRedis) ResetCounters(ctx context.Context, identity string, feature *domain.FeatureKind) error {
	identity, err := requireIdentity(identity)
	if err != nil {
		return err
	}
	key := r.countersKey(identity)
	if feature == nil {
		err = r.client.Del(ctx, key).Err()
	} else {
		err = r.client.HSet(ctx, key, string(*feature), 0).Err()
	}
	if err != nil {
		return fmt.Errorf("reset counters: %w", err)
	}
	return nil
}

func parseCounterFields(fields map[string]string) (domain.UsageCounters, error) {
	counters := domain.NewUsageCounters()
	for name, raw := range fields {
		f, err := domain.ParseFeature(name)
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse counter %s: %w", name, err)
		}
		counters[f] = n
	}
	return counters.Normalize(), nil
}

var (
	_ domain.CounterStore       = (*CounterRepositoryRedis)(nil)
	_ domain.SubscriptionWriter = (*CounterRepositoryRedis)(nil)
	_ domain.CounterResetter    = (*CounterRepositoryRedis)(nil)
)
