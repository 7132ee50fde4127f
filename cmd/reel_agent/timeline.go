package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/parallax-reel/internal/pipeline"
)

var timelineCommand = &cobra.Command{
	Use:   "timeline",
	Short: "Rebuild the reel document from the checkpoint",
	Long:  `Recomputes the frame timeline from the stored narration durations, for example at a different --fps. No external service is called.`,
	RunE:  runTimeline,
}

func init() {
	addFPSFlag(timelineCommand)
	rootCmd.AddCommand(timelineCommand)
}

func runTimeline(cmd *cobra.Command, _ []string) error {
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

	doc, err := pipeline.BuildTimeline(ctx, pipeline.RunOptions{
		Store:   store,
		FPS:     cfg.FPS,
		Printer: printer(cmd, cfg),
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Timeline: %d beats, %d frames at %d fps (%.2fs)\n",
		len(doc.Timeline), doc.TotalFrames, doc.FPS, doc.TotalDuration)
	return nil
}
