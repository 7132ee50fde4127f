package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/parallax-reel/internal/config"
	"github.com/jonathan/parallax-reel/internal/server"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCommand = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the runtime API",
	Long:  `Signs a token with REEL_JWT_SECRET (and REEL_JWT_ISSUER / REEL_JWT_AUDIENCE when set) for a player or render worker.`,
	RunE:  runToken,
}

func init() {
	tokenCommand.Flags().StringVar(&tokenSubject, "subject", "player", "Token subject")
	tokenCommand.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCommand)
}

func runToken(cmd *cobra.Command, _ []string) error {
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	token, err := server.NewJWTService(jwtCfg).GenerateToken(tokenSubject, tokenTTL)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
