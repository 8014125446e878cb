package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marketdesk/server/internal/domain"
	"github.com/marketdesk/server/internal/middleware"
	"github.com/marketdesk/server/internal/notice"
	"github.com/marketdesk/server/internal/quota"
)

type featureUsageDTO struct {
	Feature   domain.FeatureKind      `json:"feature"`
	Loading   bool                    `json:"loading"`
	Tier      domain.SubscriptionTier `json:"tier"`
	Unlimited bool                    `json:"unlimited"`
	Limit     int                     `json:"limit"`
	Usage     quota.FeatureUsage      `json:"usage"`
}

type noticeDTO struct {
	Kind    notice.Kind `json:"kind"`
	Message string      `json:"message"`
}

type incrementDTO struct {
	OK     bool           `json:"ok"`
	Usage  quota.Snapshot `json:"usage"`
	Notice *noticeDTO     `json:"notice,omitempty"`
}

// UsageSnapshot reports the quota state of every feature for the caller.
func (a *App) UsageSnapshot(w http.ResponseWriter, r *http.Request) {
	svc, ok := a.openService(w, r, nil)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, svc.Snapshot())
}

func (a *App) FeatureUsage(w http.ResponseWriter, r *http.Request) {
	feature, ok := a.featureParam(w, r)
	if !ok {
		return
	}
	svc, ok := a.openService(w, r, nil)
	if !ok {
		return
	}
	tier := svc.Tier()
	a.json(w, http.StatusOK, featureUsageDTO{
		Feature:   feature,
		Loading:   svc.Loading(),
		Tier:      tier,
		Unlimited: tier.Unlimited(),
		Limit:     svc.Limit(),
		Usage:     svc.FeatureUsage(feature),
	})
}

// UsageIncrement records one use of the feature. Failures carry the single
// notice produced by the quota service, localized for the request.
func (a *App) UsageIncrement(w http.ResponseWriter, r *http.Request) {
	feature, ok := a.featureParam(w, r)
	if !ok {
		return
	}
	notes := &notice.Recorder{}
	svc, ok := a.openService(w, r, notes)
	if !ok {
		return
	}

	if svc.IncrementUsage(r.Context(), feature) {
		a.json(w, http.StatusOK, incrementDTO{OK: true, Usage: svc.Snapshot()})
		return
	}

	resp := incrementDTO{OK: false, Usage: svc.Snapshot()}
	status := http.StatusServiceUnavailable
	if n, found := notes.Last(); found {
		resp.Notice = &noticeDTO{
			Kind:    n.Kind,
			Message: a.Notices.Message(middleware.LocaleFromContext(r.Context()), n),
		}
		status = statusForNotice(n.Kind)
	}
	a.json(w, status, resp)
}

func statusForNotice(kind notice.Kind) int {
	switch kind {
	case notice.KindQuotaExceeded:
		return http.StatusForbidden
	case notice.KindUnauthenticated:
		return http.StatusUnauthorized
	case notice.KindUnknownFeature:
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

func (a *App) featureParam(w http.ResponseWriter, r *http.Request) (domain.FeatureKind, bool) {
	feature, err := domain.ParseFeature(chi.URLParam(r, "feature"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "unknown_feature", err.Error())
		return "", false
	}
	return feature, true
}

func (a *App) openService(w http.ResponseWriter, r *http.Request, notifier quota.Notifier) (*quota.Service, bool) {
	session, ok := a.currentSession(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return nil, false
	}
	svc, err := a.Quota.Open(r.Context(), session, notifier)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			a.error(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return nil, false
		}
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("mode", string(session.Mode)).
			Msg("open quota service failed")
		a.error(w, http.StatusInternalServerError, "internal", "usage tracking unavailable")
		return nil, false
	}
	return svc, true
}
