package domain

import (
	"fmt"
	"strings"
)

// FeatureKind enumerates the content generators that are subject to usage quota.
type FeatureKind string

const (
	FeatureWebsite     FeatureKind = "website"
	FeatureAdvertising FeatureKind = "advertising"
	FeatureEmail       FeatureKind = "email"
	FeatureSocial      FeatureKind = "social"
)

var allFeatures = [...]FeatureKind{FeatureWebsite, FeatureAdvertising, FeatureEmail, FeatureSocial}

// AllFeatures returns every quota-tracked feature in display order.
func AllFeatures() []FeatureKind {
	out := make([]FeatureKind, len(allFeatures))
	copy(out, allFeatures[:])
	return out
}

// Valid reports whether f belongs to the closed feature set.
func (f FeatureKind) Valid() bool {
	switch f {
	case FeatureWebsite, FeatureAdvertising, FeatureEmail, FeatureSocial:
		return true
	}
	return false
}

func (f FeatureKind) String() string { return string(f) }

// ParseFeature normalizes raw input into a FeatureKind.
func ParseFeature(raw string) (FeatureKind, error) {
	f := FeatureKind(strings.ToLower(strings.TrimSpace(raw)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFeature, raw)
	}
	return f, nil
}
