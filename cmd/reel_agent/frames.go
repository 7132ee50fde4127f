package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/parallax-reel/internal/parallax"
	"github.com/jonathan/parallax-reel/internal/pipeline"
)

var framesOut string

var framesCommand = &cobra.Command{
	Use:   "frames",
	Short: "Export the transforms of every frame as JSON",
	Long:  `Precomputes the background and subject transforms of every frame of the reel, grouped per beat, for runtimes that cannot evaluate the easing themselves.`,
	RunE:  runFrames,
}

func init() {
	framesCommand.Flags().StringVar(&framesOut, "out", "", "Output file (default: <output>/frames.json)")
	rootCmd.AddCommand(framesCommand)
}

func runFrames(cmd *cobra.Command, _ []string) error {
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

	doc, err := store.LoadReel(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reel document: %w", err)
	}

	sheets, err := parallax.Sheet(ctx, doc)
	if err != nil {
		return err
	}

	out := framesOut
	if out == "" {
		out = filepath.Join(cfg.OutputDir, "frames.json")
	}
	data, err := json.Marshal(sheets)
	if err != nil {
		return fmt.Errorf("failed to encode frames: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d frames to %s\n", doc.TotalFrames, out)
	return nil
}
