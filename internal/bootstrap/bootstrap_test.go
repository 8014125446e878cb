package bootstrap

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketdesk/server/internal/infra"
	"github.com/marketdesk/server/internal/storage"
)

func TestQuotaOptionsFromConfig(t *testing.T) {
	cfg := &infra.Config{Quota: infra.QuotaConfig{
		FreeLimit:        7,
		MaxRetries:       2,
		IncrementTimeout: 3 * time.Second,
		BackoffBase:      250 * time.Millisecond,
		BackoffMax:       time.Second,
	}}
	opts := QuotaOptions(cfg, zerolog.Nop(), nil)

	assert.Equal(t, 7, opts.FreeLimit)
	assert.Equal(t, 2, opts.MaxRetries)
	assert.Equal(t, 3*time.Second, opts.AttemptTimeout)
	assert.Equal(t, time.Second, opts.Backoff.Delay(5))
	assert.Equal(t, 500*time.Millisecond, opts.Backoff.Delay(1))
	require.NotNil(t, opts.Logger)
}

func TestOpenLocalStore(t *testing.T) {
	for _, kind := range []string{infra.DemoStoreFile, infra.DemoStoreSQLite} {
		t.Run(kind, func(t *testing.T) {
			cfg := &infra.Config{DemoStore: kind, DemoStoragePath: t.TempDir()}
			stores := &Stores{}
			require.NoError(t, OpenLocalStore(cfg, zerolog.Nop(), stores))
			defer stores.Close()

			switch kind {
			case infra.DemoStoreSQLite:
				assert.IsType(t, &storage.SQLiteStore{}, stores.Local)
			default:
				assert.IsType(t, &storage.FileStore{}, stores.Local)
			}
		})
	}
}
