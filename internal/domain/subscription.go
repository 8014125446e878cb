package domain

// TierKind enumerates billing plans.
type TierKind string

const (
	TierFree    TierKind = "free"
	TierPremium TierKind = "premium"
)

// SubscriptionStatus enumerates billing states reported by the store.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusInactive SubscriptionStatus = "inactive"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusPastDue  SubscriptionStatus = "past_due"
)

// SubscriptionTier is the actor's plan as last read from the store.
type SubscriptionTier struct {
	Kind   TierKind           `json:"kind"`
	Status SubscriptionStatus `json:"status"`
}

// FreeTier is the fallback when no subscription record exists.
func FreeTier() SubscriptionTier {
	return SubscriptionTier{Kind: TierFree, Status: StatusInactive}
}

// PremiumActive is the tier granted to demo sessions.
func PremiumActive() SubscriptionTier {
	return SubscriptionTier{Kind: TierPremium, Status: StatusActive}
}

// Unlimited reports whether quota gating is lifted. Only an active premium plan qualifies.
func (t SubscriptionTier) Unlimited() bool {
	return t.Kind == TierPremium && t.Status == StatusActive
}

// ParseTierKind maps raw values to a TierKind, falling back to free.
func ParseTierKind(raw string) TierKind {
	switch TierKind(raw) {
	case TierPremium:
		return TierPremium
	case "pro", "supporter":
		return TierPremium
	default:
		return TierFree
	}
}

// ParseSubscriptionStatus maps raw values to a SubscriptionStatus, falling back to inactive.
func ParseSubscriptionStatus(raw string) SubscriptionStatus {
	switch s := SubscriptionStatus(raw); s {
	case StatusActive, StatusCanceled, StatusPastDue:
		return s
	default:
		return StatusInactive
	}
}
