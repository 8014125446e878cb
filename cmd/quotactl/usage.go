package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marketdesk/server/internal/bootstrap"
	"github.com/marketdesk/server/internal/domain"
	"github.com/marketdesk/server/internal/infra"
	"github.com/marketdesk/server/internal/notice"
	"github.com/marketdesk/server/internal/quota"
)

func newUsageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Inspect, record or reset feature usage",
	}
	cmd.AddCommand(newUsageShowCmd(), newUsageIncrementCmd(), newUsageResetCmd())
	return cmd
}

func newUsageShowCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print per-feature usage for an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := remoteSession(id)
			if err != nil {
				return err
			}
			return withStores(cmd.Context(), func(cfg *infra.Config, logger zerolog.Logger, stores *bootstrap.Stores) error {
				factory := quota.NewFactory(stores.Counters, nil, bootstrap.QuotaOptions(cfg, logger, nil))
				svc, err := factory.Open(cmd.Context(), session, nil)
				if err != nil {
					return err
				}
				printSnapshot(cmd.OutOrStdout(), session.Identity, svc.Snapshot())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "account identity")
	return cmd
}

func newUsageIncrementCmd() *cobra.Command {
	var id, featureName, locale string
	cmd := &cobra.Command{
		Use:   "increment",
		Short: "Record one use of a feature, honouring the quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := remoteSession(id)
			if err != nil {
				return err
			}
			feature, err := domain.ParseFeature(featureName)
			if err != nil {
				return err
			}
			return withStores(cmd.Context(), func(cfg *infra.Config, logger zerolog.Logger, stores *bootstrap.Stores) error {
				notes := &notice.Recorder{}
				factory := quota.NewFactory(stores.Counters, nil, bootstrap.QuotaOptions(cfg, logger, nil))
				svc, err := factory.Open(cmd.Context(), session, notes)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if svc.IncrementUsage(cmd.Context(), feature) {
					u := svc.FeatureUsage(feature)
					fmt.Fprintf(out, "recorded %s for %s: used=%d remaining=%s\n", feature, session.Identity, u.Used, formatRemaining(u.Remaining))
					return nil
				}
				n, _ := notes.Last()
				fmt.Fprintf(out, "rejected (%s): %s\n", n.Kind, notice.NewCatalog().Message(locale, n))
				return fmt.Errorf("increment %s: %s", feature, n.Kind)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "account identity")
	cmd.Flags().StringVar(&featureName, "feature", "", "feature (website, advertising, email, social)")
	cmd.Flags().StringVar(&locale, "locale", "en", "language for the notice text")
	return cmd
}

func newUsageResetCmd() *cobra.Command {
	var id, featureName string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Zero an account's counters, for one feature or all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := remoteSession(id)
			if err != nil {
				return err
			}
			var feature *domain.FeatureKind
			if strings.TrimSpace(featureName) != "" {
				f, err := domain.ParseFeature(featureName)
				if err != nil {
					return err
				}
				feature = &f
			}
			return withStores(cmd.Context(), func(_ *infra.Config, logger zerolog.Logger, stores *bootstrap.Stores) error {
				if err := stores.Counters.ResetCounters(cmd.Context(), session.Identity, feature); err != nil {
					return fmt.Errorf("reset counters: %w", err)
				}
				scope := "all features"
				if feature != nil {
					scope = string(*feature)
				}
				logger.Info().Str("user_id", session.Identity).Str("scope", scope).Msg("usage reset")
				fmt.Fprintf(cmd.OutOrStdout(), "reset %s for %s\n", scope, session.Identity)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "account identity")
	cmd.Flags().StringVar(&featureName, "feature", "", "feature to reset; empty resets all")
	return cmd
}

func remoteSession(id string) (domain.ActorSession, error) {
	session := domain.RemoteSession(id)
	if session.Identity == "" {
		return session, errors.New("--id is required")
	}
	return session, nil
}

func printSnapshot(out io.Writer, identity string, snap quota.Snapshot) {
	fmt.Fprintf(out, "account %s: %s/%s unlimited=%t limit=%d\n", identity, snap.Tier.Kind, snap.Tier.Status, snap.Unlimited, snap.Limit)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FEATURE\tUSED\tREMAINING\tPERCENT\tCAN USE")
	for _, f := range domain.AllFeatures() {
		u := snap.Features[f]
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.0f%%\t%t\n", f, u.Used, formatRemaining(u.Remaining), u.Percentage, u.CanUse)
	}
	_ = tw.Flush()
}

func formatRemaining(n int) string {
	if n < 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}
