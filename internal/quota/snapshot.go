package quota

import "github.com/marketdesk/server/internal/domain"

// FeatureUsage is the derived quota state of one feature.
type FeatureUsage struct {
	Used       int     `json:"used"`
	Remaining  int     `json:"remaining"`
	Percentage float64 `json:"percentage"`
	CanUse     bool    `json:"can_use"`
}

// Snapshot is a point-in-time view of a Service, shaped for API responses.
type Snapshot struct {
	Loading   bool                                `json:"loading"`
	Tier      domain.SubscriptionTier             `json:"tier"`
	Unlimited bool                                `json:"unlimited"`
	Limit     int                                 `json:"limit"`
	Features  map[domain.FeatureKind]FeatureUsage `json:"features"`
}

// FeatureUsage returns the derived state of f.
func (s *Service) FeatureUsage(f domain.FeatureKind) FeatureUsage {
	used := 0
	if f.Valid() {
		s.mu.RLock()
		used = s.counters.Get(f)
		s.mu.RUnlock()
	}
	return FeatureUsage{
		Used:       used,
		Remaining:  s.RemainingUsage(f),
		Percentage: s.UsagePercentage(f),
		CanUse:     s.CanUseFeature(f),
	}
}

// Snapshot returns the derived state of every feature.
func (s *Service) Snapshot() Snapshot {
	tier := s.Tier()
	snap := Snapshot{
		Loading:   s.Loading(),
		Tier:      tier,
		Unlimited: tier.Unlimited(),
		Limit:     s.opts.FreeLimit,
		Features:  make(map[domain.FeatureKind]FeatureUsage, len(domain.AllFeatures())),
	}
	for _, f := range domain.AllFeatures() {
		snap.Features[f] = s.FeatureUsage(f)
	}
	return snap
}
