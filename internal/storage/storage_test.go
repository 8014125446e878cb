package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/marketdesk/server/internal/domain"
)

func openStores(t *testing.T) map[string]domain.LocalStateStore {
	t.Helper()
	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "files"))
	require.NoError(t, err)

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]domain.LocalStateStore{
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

func TestLocalStoresDefaultToZero(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			counters, err := store.LoadCounters(context.Background(), "fresh-session")
			require.NoError(t, err)
			if diff := cmp.Diff(domain.NewUsageCounters(), counters); diff != "" {
				t.Fatalf("unexpected counters (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocalStoresIncrement(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 3; i++ {
				require.NoError(t, store.IncrementCounter(ctx, "demo-1", domain.FeatureWebsite))
			}
			require.NoError(t, store.IncrementCounter(ctx, "demo-1", domain.FeatureEmail))

			want := domain.NewUsageCounters()
			want[domain.FeatureWebsite] = 3
			want[domain.FeatureEmail] = 1
			got, err := store.LoadCounters(ctx, "demo-1")
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("counters mismatch (-want +got):\n%s", diff)
			}

			other, err := store.LoadCounters(ctx, "demo-2")
			require.NoError(t, err)
			require.Equal(t, 0, other[domain.FeatureWebsite])

			require.ErrorIs(t, store.IncrementCounter(ctx, "demo-1", "fax"), domain.ErrUnknownFeature)
		})
	}
}

func TestLocalStoresConcurrentIncrements(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				i := i
				wg.Add(1)
				go func() {
					defer wg.Done()
					f := domain.FeatureSocial
					if i%2 == 0 {
						f = domain.FeatureAdvertising
					}
					if err := store.IncrementCounter(ctx, "demo-race", f); err != nil {
						t.Error(err)
					}
				}()
			}
			wg.Wait()

			got, err := store.LoadCounters(ctx, "demo-race")
			require.NoError(t, err)
			require.Equal(t, 5, got[domain.FeatureSocial])
			require.Equal(t, 5, got[domain.FeatureAdvertising])
		})
	}
}

func TestLocalStoresRejectTraversal(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.LoadCounters(context.Background(), "../etc/passwd")
			require.Error(t, err)
			require.Error(t, store.IncrementCounter(context.Background(), "a/b", domain.FeatureEmail))
		})
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.IncrementCounter(context.Background(), "demo-1", domain.FeatureEmail))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "demo-1.json", entries[0].Name())
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore(" ")
	require.Error(t, err)
}
