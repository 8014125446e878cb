package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/marketdesk/server/internal/domain"
	"github.com/marketdesk/server/internal/middleware"
)

type demoSessionDTO struct {
	SessionID string             `json:"session_id"`
	Mode      domain.SessionMode `json:"mode"`
	Header    string             `json:"header"`
	Country   string             `json:"country,omitempty"`
}

// DemoSessionCreate hands out a fresh demo session id. Usage recorded under it
// stays on this host and never reaches the shared counter store.
func (a *App) DemoSessionCreate(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	country := middleware.CountryFromContext(r.Context())
	a.Logger.Info().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("session_id", id).
		Str("country", country).
		Msg("demo session started")
	a.json(w, http.StatusCreated, demoSessionDTO{
		SessionID: id,
		Mode:      domain.SessionLocalDemo,
		Header:    middleware.DemoSessionHeader,
		Country:   country,
	})
}
