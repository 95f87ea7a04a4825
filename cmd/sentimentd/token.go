package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reelsense/sentiment-api/internal/auth"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token for protected endpoints",
		Run:   runToken,
	}
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().String("subject", "admin", "Token subject")
	return cmd
}

func runToken(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}

	if cfg.AdminSecret == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "no admin secret configured; set SENTIMENT_ADMIN_SECRET or admin_secret in the config file")
		if s, err := auth.NewRandomSecretB64(32); err == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "freshly generated secret you could use: %s\n", s)
		}
		os.Exit(1)
	}

	ttl, _ := cmd.Flags().GetDuration("ttl")
	subject, _ := cmd.Flags().GetString("subject")

	token, err := auth.SignAdmin(auth.DecodeSecret(cfg.AdminSecret), subject, ttl)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
}
