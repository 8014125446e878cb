package sqlinline

import (
	"strings"
	"testing"

	"github.com/marketdesk/server/internal/infra"
)

func TestStatementsCarryUniqueMarkers(t *testing.T) {
	statements := map[string]string{
		"QSelectFeatureUsage":    QSelectFeatureUsage,
		"QIncrementFeatureUsage": QIncrementFeatureUsage,
		"QResetFeatureUsage":     QResetFeatureUsage,
		"QInsertUsageEvent":      QInsertUsageEvent,
		"QSelectSubscription":    QSelectSubscription,
		"QUpsertSubscription":    QUpsertSubscription,
		"QCreateSchema":          QCreateSchema,
	}
	seen := make(map[string]string, len(statements))
	for name, q := range statements {
		marker, body, err := infra.SplitMarker(q)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if strings.TrimSpace(body) == "" {
			t.Fatalf("%s: empty statement body", name)
		}
		if other, dup := seen[marker]; dup {
			t.Fatalf("%s reuses marker of %s", name, other)
		}
		seen[marker] = name
	}
}
