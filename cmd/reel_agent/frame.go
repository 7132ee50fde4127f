package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonathan/parallax-reel/internal/parallax"
	"github.com/jonathan/parallax-reel/internal/pipeline"
	"github.com/jonathan/parallax-reel/internal/timeline"
)

var frameCommand = &cobra.Command{
	Use:   "frame <frame>",
	Short: "Print the layer transforms of one global frame",
	Args:  cobra.ExactArgs(1),
	RunE:  runFrame,
}

type frameLayer struct {
	Image     string `json:"image"`
	Transform string `json:"transform"`
	Origin    string `json:"origin"`
}

type frameOutput struct {
	Frame      int        `json:"frame"`
	BeatIndex  int        `json:"beatIndex"`
	LocalFrame int        `json:"localFrame"`
	Length     int        `json:"lengthFrames"`
	Progress   float64    `json:"progress"`
	Audio      string     `json:"audio,omitempty"`
	Background frameLayer `json:"background"`
	Object     frameLayer `json:"object"`
}

func init() {
	rootCmd.AddCommand(frameCommand)
}

func runFrame(cmd *cobra.Command, args []string) error {
	frame, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("frame must be an integer: %w", err)
	}

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

	entry, local, ok := timeline.FromDocument(doc).EntryAt(frame)
	if !ok {
		return fmt.Errorf("frame %d out of range [0, %d)", frame, doc.TotalFrames)
	}
	beat, ok := doc.BeatByIndex(entry.BeatIndex)
	if !ok {
		return fmt.Errorf("timeline references unknown beat %d", entry.BeatIndex)
	}

	ft := parallax.ComposeBeat(beat, local, entry.LengthFrames)
	bgTransform, bgOrigin := ft.Background.CSS()
	objTransform, objOrigin := ft.Object.CSS()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(frameOutput{
		Frame:      frame,
		BeatIndex:  entry.BeatIndex,
		LocalFrame: local,
		Length:     entry.LengthFrames,
		Progress:   ft.Progress,
		Audio:      beat.AudioPath,
		Background: frameLayer{Image: beat.BackgroundImagePath, Transform: bgTransform, Origin: bgOrigin},
		Object:     frameLayer{Image: beat.ObjectImagePath, Transform: objTransform, Origin: objOrigin},
	})
}
