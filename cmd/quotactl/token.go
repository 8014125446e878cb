package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketdesk/server/internal/middleware"
)

func newTokenCmd() *cobra.Command {
	var id, locale string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token for an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer).Sign(id, locale, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "account identity (token subject)")
	cmd.Flags().StringVar(&locale, "locale", "", "preferred notice language")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
