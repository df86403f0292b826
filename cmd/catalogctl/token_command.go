package main

import (
	"fmt"
	"time"

	"github.com/pageza/nocapcooking/backend/internal/service"
	"github.com/spf13/cobra"
)

func newTokenCommand(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token for /admin and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.catalogConfig()
			if err != nil {
				return err
			}
			token, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer).GenerateToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
