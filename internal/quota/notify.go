package quota

import (
	"errors"

	"github.com/marketdesk/server/internal/domain"
	"github.com/marketdesk/server/internal/notice"
)

// Notifier receives the single user-facing notice of each failed gated action.
type Notifier interface {
	Notify(n notice.Notice)
}

// NotifierFunc adapts a plain func to Notifier.
type NotifierFunc func(n notice.Notice)

func (f NotifierFunc) Notify(n notice.Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(notice.Notice) {}

// Outcome labels the result of an increment for metrics and logs.
type Outcome string

const (
	OutcomeOK              Outcome = "ok"
	OutcomeQuotaExceeded   Outcome = "quota_exceeded"
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomeTransient       Outcome = "transient"
	OutcomeFailed          Outcome = "failed"
	OutcomeUnknownFeature  Outcome = "unknown_feature"
)

// classifyFailure maps a terminal store error onto the user-facing taxonomy.
// retryable is true when the loop gave up because retries ran out.
func classifyFailure(err error, retryable bool) (Outcome, notice.Kind) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return OutcomeUnauthenticated, notice.KindUnauthenticated
	case errors.Is(err, domain.ErrQuotaExceeded):
		return OutcomeQuotaExceeded, notice.KindQuotaExceeded
	case errors.Is(err, domain.ErrUnknownFeature):
		return OutcomeUnknownFeature, notice.KindUnknownFeature
	case retryable:
		return OutcomeTransient, notice.KindTransient
	default:
		return OutcomeFailed, notice.KindTransient
	}
}
