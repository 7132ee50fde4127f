// Package main provides the entry point for the parallax reel agent.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reel_agent",
	Short: "Parallax reel generator",
	Long: `reel_agent turns a topic into a short vertical reel: a scenario of beats, a layered
image per beat, voice narration, and a frame-accurate timeline with parallax transforms.

Every stage is checkpointed; rerunning a command resumes where the last one stopped.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
