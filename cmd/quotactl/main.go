package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marketdesk/server/internal/bootstrap"
	"github.com/marketdesk/server/internal/infra"
)

var (
	loadConfig = infra.LoadConfig
	openStores = func(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*bootstrap.Stores, error) {
		stores := &bootstrap.Stores{}
		if err := bootstrap.OpenCounterStore(ctx, cfg, logger, stores); err != nil {
			return nil, err
		}
		return stores, nil
	}
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quotactl",
		Short:         "Administer marketdesk usage quotas",
		Long:          `quotactl inspects and adjusts per-feature usage counters and subscription plans in the shared counter store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			infra.LoadDotEnv()
		},
	}
	root.AddCommand(newMigrateCmd(), newPlanCmd(), newUsageCmd(), newTokenCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withStores loads config and opens the counter store for the duration of fn.
func withStores(ctx context.Context, fn func(cfg *infra.Config, logger zerolog.Logger, stores *bootstrap.Stores) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "quotactl").Logger()
	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()
	return fn(cfg, logger, stores)
}
