package quota

import (
	"context"

	"github.com/marketdesk/server/internal/domain"
)

// Factory builds Services that share stores and options. The HTTP layer and
// the admin CLI create one Service per resolved session.
// A nil store limits the factory to demo sessions.
type Factory struct {
	store domain.CounterStore
	local domain.LocalStateStore
	opts  Options
}

func NewFactory(store domain.CounterStore, local domain.LocalStateStore, opts Options) *Factory {
	return &Factory{store: store, local: local, opts: opts}
}

// New builds an uninitialized Service for session. A nil notifier keeps the
// factory default.
func (f *Factory) New(session domain.ActorSession, notifier Notifier) (*Service, error) {
	opts := f.opts
	if notifier != nil {
		opts.Notifier = notifier
	}
	return NewForSession(session, f.store, f.local, opts)
}

// Open builds a Service for session and runs Initialize.
func (f *Factory) Open(ctx context.Context, session domain.ActorSession, notifier Notifier) (*Service, error) {
	svc, err := f.New(session, notifier)
	if err != nil {
		return nil, err
	}
	svc.Initialize(ctx)
	return svc, nil
}
