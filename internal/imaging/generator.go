// Package imaging renders beat images with an external text-to-image CLI.
package imaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jonathan/parallax-reel/internal/toolexec"
)

// Generator produces an image file for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, outPath string) error
}

// Options fixes the render parameters shared by every beat.
type Options struct {
	Command   string
	Width     int
	Height    int
	Steps     int
	CFGScale  float64
	ExtraArgs []string
}

// CLIGenerator invokes a stable-diffusion style command line tool.
type CLIGenerator struct {
	runner toolexec.Runner
	opts   Options
}

// NewCLIGenerator creates a generator using runner to execute the tool.
func NewCLIGenerator(runner toolexec.Runner, opts Options) *CLIGenerator {
	return &CLIGenerator{runner: runner, opts: opts}
}

// Args returns the tool arguments for a prompt and output path.
func (g *CLIGenerator) Args(prompt, outPath string) []string {
	args := append([]string{}, g.opts.ExtraArgs...)
	return append(args,
		"-p", prompt,
		"-H", strconv.Itoa(g.opts.Height),
		"-W", strconv.Itoa(g.opts.Width),
		"--steps", strconv.Itoa(g.opts.Steps),
		"--cfg-scale", strconv.FormatFloat(g.opts.CFGScale, 'f', -1, 64),
		"-o", outPath,
	)
}

// Generate renders prompt into outPath and checks that the file was written.
func (g *CLIGenerator) Generate(ctx context.Context, prompt, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	if _, err := g.runner.Run(ctx, g.opts.Command, g.Args(prompt, outPath)...); err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}

	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("image generator did not produce %s: %w", outPath, err)
	}
	return nil
}
