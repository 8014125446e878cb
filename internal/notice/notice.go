// Package notice carries the user-facing outcome of a gated action and renders
// it in the caller's language.
package notice

import (
	"sync"

	"github.com/marketdesk/server/internal/domain"
)

// Kind classifies a terminal usage outcome.
type Kind string

const (
	KindQuotaExceeded   Kind = "quota_exceeded"
	KindUnauthenticated Kind = "unauthenticated"
	KindTransient       Kind = "transient"
	KindUnknownFeature  Kind = "unknown_feature"
)

// Notice is emitted once for every terminal failure of a gated action.
type Notice struct {
	Kind    Kind
	Feature domain.FeatureKind
	// Attempts is the number of store calls made before giving up.
	Attempts int
}

// Recorder keeps every notice it receives. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// All returns a copy of the recorded notices in arrival order.
func (r *Recorder) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
