package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/parallax-reel/internal/config"
	"github.com/jonathan/parallax-reel/internal/logging"
	"github.com/jonathan/parallax-reel/internal/pipeline"
	"github.com/jonathan/parallax-reel/internal/server"
	"github.com/jonathan/parallax-reel/internal/server/ratelimit"
)

var (
	servePort     int
	serveCacheTTL time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the runtime API server",
	Long: `Start a read-only HTTP server exposing the reel document, the timeline and per-frame
layer transforms. Bearer auth is enabled when REEL_JWT_SECRET is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().DurationVar(&serveCacheTTL, "cache-ttl", server.DefaultCacheTTL, "How long the reel document is cached")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd, cfg)

	store, closeStore, err := pipeline.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	srvCfg := server.Config{
		Port:      servePort,
		Store:     store,
		CacheTTL:  serveCacheTTL,
		RateLimit: ratelimit.LoadConfig(),
		Logger:    logging.FromContext(ctx),
	}
	if config.JWTEnabled() {
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return err
		}
		srvCfg.JWT = jwtCfg
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}
