package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marketdesk/server/internal/bootstrap"
	"github.com/marketdesk/server/internal/infra"
	"github.com/marketdesk/server/internal/sqlinline"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the usage tables in Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(cfg *infra.Config, logger zerolog.Logger, stores *bootstrap.Stores) error {
				if stores.SQL == nil {
					return errors.New("migrate requires COUNTER_STORE=postgres")
				}
				if _, err := stores.SQL.Exec(cmd.Context(), sqlinline.QCreateSchema); err != nil {
					return fmt.Errorf("apply schema: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
				return nil
			})
		},
	}
}
