package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/parallax-reel/internal/pipeline"
	"github.com/jonathan/parallax-reel/internal/toolexec"
)

var generateCommand = &cobra.Command{
	Use:   "generate",
	Short: "Obtain the scenario and produce every beat's image layers",
	Long: `Runs the visual half of the pipeline: scenario, image generation, segmentation into
subject and background layers, and pivot detection. Narration is left to 'narrate'.`,
	RunE: runGenerate,
}

func init() {
	addScenarioFlags(generateCommand)
	rootCmd.AddCommand(generateCommand)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
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

	state, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	provider, closeProvider, err := pipeline.NewScenarioProvider(ctx, cfg, store, state.Scenario == nil && !state.Completed)
	if err != nil {
		return err
	}
	defer closeProvider()

	return pipeline.RunGenerate(ctx, pipeline.RunOptions{
		Store:      store,
		Scenario:   provider,
		Beats:      pipeline.NewBeatProcessor(cfg, store, toolexec.NewExecRunner()),
		OutputDir:  cfg.OutputDir,
		Title:      pipeline.Title(cfg),
		Printer:    printer(cmd, cfg),
		OnProgress: progressPrinter(cmd.OutOrStdout()),
	})
}
