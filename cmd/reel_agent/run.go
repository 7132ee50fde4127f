package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/parallax-reel/internal/config"
	"github.com/jonathan/parallax-reel/internal/logging"
	"github.com/jonathan/parallax-reel/internal/pipeline"
	"github.com/jonathan/parallax-reel/internal/toolexec"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full reel pipeline end-to-end",
	Long: `Runs every stage: scenario -> image -> segmentation -> pivot -> narration -> duration -> timeline.

A completed run exits immediately without calling any external service; use 'reset' to start over.
Configuration can be loaded from a JSON or YAML file using --config. Command-line flags override file values.`,
	RunE: runPipelineCmd,
}

func init() {
	addScenarioFlags(runCommand)
	addFPSFlag(runCommand)
	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
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
	if state.Completed {
		logging.FromContext(ctx).Info("run already completed; use 'reset' to start over", "run_id", state.RunID)
		return nil
	}

	// Fail on missing credentials before any stage spends money.
	needs := []string{config.NeedVoice}
	if state.Scenario == nil {
		needs = append(needs, config.NeedScenario)
	}
	if err := cfg.RequireCredentials(needs...); err != nil {
		return err
	}

	provider, closeProvider, err := pipeline.NewScenarioProvider(ctx, cfg, store, state.Scenario == nil)
	if err != nil {
		return err
	}
	defer closeProvider()

	runner := toolexec.NewExecRunner()
	narrator, err := pipeline.NewNarrator(cfg, store, runner)
	if err != nil {
		return err
	}

	return pipeline.RunPipeline(ctx, pipeline.RunOptions{
		Store:      store,
		Scenario:   provider,
		Beats:      pipeline.NewBeatProcessor(cfg, store, runner),
		Narration:  narrator,
		OutputDir:  cfg.OutputDir,
		Title:      pipeline.Title(cfg),
		FPS:        cfg.FPS,
		Printer:    printer(cmd, cfg),
		OnProgress: progressPrinter(cmd.OutOrStdout()),
	})
}
