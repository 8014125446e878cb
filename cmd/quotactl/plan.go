package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marketdesk/server/internal/bootstrap"
	"github.com/marketdesk/server/internal/domain"
	"github.com/marketdesk/server/internal/infra"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show or change an account's subscription plan",
	}
	cmd.AddCommand(newPlanSetCmd(), newPlanShowCmd())
	return cmd
}

func newPlanSetCmd() *cobra.Command {
	var id, tier, status string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Assign a plan to an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id = strings.TrimSpace(id)
			if id == "" {
				return errors.New("--id is required")
			}
			plan := domain.SubscriptionTier{
				Kind:   domain.ParseTierKind(tier),
				Status: domain.ParseSubscriptionStatus(status),
			}
			return withStores(cmd.Context(), func(_ *infra.Config, logger zerolog.Logger, stores *bootstrap.Stores) error {
				if err := stores.Counters.WriteSubscription(cmd.Context(), id, plan); err != nil {
					return fmt.Errorf("write subscription: %w", err)
				}
				logger.Info().Str("user_id", id).Str("tier", string(plan.Kind)).Str("status", string(plan.Status)).Msg("plan updated")
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s/%s (unlimited=%t)\n", id, plan.Kind, plan.Status, plan.Unlimited())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "account identity")
	cmd.Flags().StringVar(&tier, "tier", string(domain.TierPremium), "plan tier (free, premium)")
	cmd.Flags().StringVar(&status, "status", string(domain.StatusActive), "plan status (active, inactive, canceled, past_due)")
	return cmd
}

func newPlanShowCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print an account's plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id = strings.TrimSpace(id)
			if id == "" {
				return errors.New("--id is required")
			}
			return withStores(cmd.Context(), func(_ *infra.Config, _ zerolog.Logger, stores *bootstrap.Stores) error {
				plan, err := stores.Counters.ReadSubscription(cmd.Context(), id)
				suffix := ""
				switch {
				case errors.Is(err, domain.ErrNotFound):
					plan, suffix = domain.FreeTier(), " (default)"
				case err != nil:
					return fmt.Errorf("read subscription: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s/%s (unlimited=%t)%s\n", id, plan.Kind, plan.Status, plan.Unlimited(), suffix)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "account identity")
	return cmd
}
