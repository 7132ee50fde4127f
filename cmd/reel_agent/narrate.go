package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/parallax-reel/internal/pipeline"
	"github.com/jonathan/parallax-reel/internal/toolexec"
)

var narrateCommand = &cobra.Command{
	Use:   "narrate",
	Short: "Voice every generated beat and write the timeline",
	Long: `Synthesizes narration for each beat whose image layers are ready, measures the audio,
and writes the reel document. Beats that are not ready are skipped with a warning.`,
	RunE: runNarrate,
}

func init() {
	addFPSFlag(narrateCommand)
	rootCmd.AddCommand(narrateCommand)
}

func runNarrate(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd, cfg)

	if err := ensureOutputDir(cfg); err != nil {
		return err
	}
	store, closeStore, err := pipeline.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	narrator, err := pipeline.NewNarrator(cfg, store, toolexec.NewExecRunner())
	if err != nil {
		return err
	}

	return pipeline.RunNarrate(ctx, pipeline.RunOptions{
		Store:      store,
		Narration:  narrator,
		OutputDir:  cfg.OutputDir,
		FPS:        cfg.FPS,
		Printer:    printer(cmd, cfg),
		OnProgress: progressPrinter(cmd.OutOrStdout()),
	})
}
