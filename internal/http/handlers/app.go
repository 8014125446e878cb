package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/marketdesk/server/internal/domain"
	"github.com/marketdesk/server/internal/middleware"
	"github.com/marketdesk/server/internal/notice"
	"github.com/marketdesk/server/internal/quota"
)

type App struct {
	Quota    *quota.Factory
	Notices  *notice.Catalog
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

func NewApp(factory *quota.Factory, notices *notice.Catalog, gatherer prometheus.Gatherer, logger zerolog.Logger) *App {
	if notices == nil {
		notices = notice.NewCatalog()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &App{Quota: factory, Notices: notices, Gatherer: gatherer, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

func (a *App) currentSession(r *http.Request) (domain.ActorSession, bool) {
	return middleware.SessionFromContext(r.Context())
}
