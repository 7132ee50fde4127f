package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/parallax-reel/internal/checkpoint"
	"github.com/jonathan/parallax-reel/internal/observability"
	"github.com/jonathan/parallax-reel/internal/pipeline"
	"github.com/jonathan/parallax-reel/internal/pipeline/steps"
)

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint progress",
	Long:  `Prints the stage status of every beat, the next stage each beat will run, and whether the reel document exists.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCommand)
}

func runStatus(cmd *cobra.Command, _ []string) error {
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

	state, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	out := cmd.OutOrStdout()
	observability.NewPrinter(out).PrintStatus(state)

	for _, b := range state.Beats {
		if next, ok := steps.NextStage(&b); ok {
			_, _ = fmt.Fprintf(out, "beat %d: next %s\n", b.Index, next)
		}
	}
	if state.Scenario != nil {
		for i := range state.Scenario.Beats {
			if _, ok := state.Beat(i); !ok {
				_, _ = fmt.Fprintf(out, "beat %d: not started\n", i)
			}
		}
	}

	doc, err := store.LoadReel(ctx)
	switch {
	case errors.Is(err, checkpoint.ErrNoReel):
		_, _ = fmt.Fprintln(out, "reel document: missing")
	case err != nil:
		return fmt.Errorf("failed to load reel document: %w", err)
	default:
		_, _ = fmt.Fprintf(out, "reel document: %d frames at %d fps\n", doc.TotalFrames, doc.FPS)
	}
	return nil
}
