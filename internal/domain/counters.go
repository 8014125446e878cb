package domain

// UsageCounters maps every FeatureKind to its non-negative use count.
// Values built through NewUsageCounters or Normalize always carry every key.
type UsageCounters map[FeatureKind]int

// NewUsageCounters returns an all-zero counter set.
func NewUsageCounters() UsageCounters {
	c := make(UsageCounters, len(allFeatures))
	for _, f := range allFeatures {
		c[f] = 0
	}
	return c
}

// Normalize fills missing features with zero, clamps negatives and drops unknown keys.
func (c UsageCounters) Normalize() UsageCounters {
	out := NewUsageCounters()
	for f, v := range c {
		if !f.Valid() {
			continue
		}
		if v < 0 {
			v = 0
		}
		out[f] = v
	}
	return out
}

// Get returns the count for f, zero when absent.
func (c UsageCounters) Get(f FeatureKind) int {
	return c[f]
}

// Inc adds one use to f.
func (c UsageCounters) Inc(f FeatureKind) {
	c[f]++
}

// Clone returns an independent copy.
func (c UsageCounters) Clone() UsageCounters {
	out := make(UsageCounters, len(c))
	for f, v := range c {
		out[f] = v
	}
	return out
}
