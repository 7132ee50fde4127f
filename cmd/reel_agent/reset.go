package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/parallax-reel/internal/narration"
	"github.com/jonathan/parallax-reel/internal/pipeline"
	"github.com/jonathan/parallax-reel/internal/storyboard"
)

var resetArtifacts bool

var resetCommand = &cobra.Command{
	Use:   "reset",
	Short: "Delete the checkpoint so the next run starts over",
	Long:  `Deletes the checkpoint and the reel document. With --artifacts, generated images, audio and review files are removed as well; otherwise existing files are reused by the next run.`,
	RunE:  runReset,
}

func init() {
	resetCommand.Flags().BoolVar(&resetArtifacts, "artifacts", false, "Also remove generated images, audio and review files")
	rootCmd.AddCommand(resetCommand)
}

func runReset(cmd *cobra.Command, _ []string) error {
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

	if err := store.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Checkpoint deleted")

	if !resetArtifacts {
		return nil
	}
	removed, err := removeArtifacts(cfg.OutputDir)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d artifacts\n", removed)
	return nil
}

// removeArtifacts deletes generated files under dir and returns how many
// top-level entries were removed.
func removeArtifacts(dir string) (int, error) {
	targets, err := filepath.Glob(filepath.Join(dir, "beat_*"))
	if err != nil {
		return 0, err
	}
	targets = append(targets,
		filepath.Join(dir, narration.AudioDir),
		filepath.Join(dir, storyboard.ScenarioFile),
		filepath.Join(dir, storyboard.StoryboardFile),
		filepath.Join(dir, "frames.json"),
	)

	removed := 0
	for _, t := range targets {
		if _, err := os.Stat(t); os.IsNotExist(err) {
			continue
		}
		if err := os.RemoveAll(t); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", t, err)
		}
		removed++
	}
	return removed, nil
}
