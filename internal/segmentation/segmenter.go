// Package segmentation separates a beat image into a transparent foreground
// subject and a background plate with an external segmentation tool.
package segmentation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonathan/parallax-reel/internal/toolexec"
)

// Output directories created by the tool
const (
	SubjectDir    = "object_output"
	BackgroundDir = "background_output"
)

// Segmenter produces subject and background layers.
type Segmenter interface {
	// ExtractSubject writes the subject with a transparent background.
	ExtractSubject(ctx context.Context, imagePath, destDir string) (string, error)
	// ExtractBackground writes the inverse mask (subject removed).
	ExtractBackground(ctx context.Context, imagePath, destDir string) (string, error)
}

// SubjectPath is where the subject layer for imagePath lands inside destDir.
func SubjectPath(imagePath, destDir string) string {
	return filepath.Join(destDir, stem(imagePath)+"_rgba.png")
}

// BackgroundPath is where the background layer for imagePath lands inside destDir.
func BackgroundPath(imagePath, destDir string) string {
	return filepath.Join(destDir, stem(imagePath)+"_rgba_reverse.png")
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CLISegmenter drives the transparent-background command line tool.
type CLISegmenter struct {
	runner    toolexec.Runner
	command   string
	threshold float64
}

// NewCLISegmenter creates a segmenter; threshold applies to the inverse pass.
func NewCLISegmenter(runner toolexec.Runner, command string, threshold float64) *CLISegmenter {
	return &CLISegmenter{runner: runner, command: command, threshold: threshold}
}

// ExtractSubject runs the tool in subject mode.
func (s *CLISegmenter) ExtractSubject(ctx context.Context, imagePath, destDir string) (string, error) {
	out := SubjectPath(imagePath, destDir)
	args := []string{"--source", imagePath, "--dest", destDir}
	if err := s.run(ctx, args, destDir, out); err != nil {
		return "", fmt.Errorf("subject extraction failed: %w", err)
	}
	return out, nil
}

// ExtractBackground runs the tool in inverse mode.
func (s *CLISegmenter) ExtractBackground(ctx context.Context, imagePath, destDir string) (string, error) {
	out := BackgroundPath(imagePath, destDir)
	args := []string{
		"--source", imagePath,
		"--reverse",
		"--threshold=" + strconv.FormatFloat(s.threshold, 'f', -1, 64),
		"--dest", destDir,
	}
	if err := s.run(ctx, args, destDir, out); err != nil {
		return "", fmt.Errorf("background extraction failed: %w", err)
	}
	return out, nil
}

func (s *CLISegmenter) run(ctx context.Context, args []string, destDir, out string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", destDir, err)
	}
	if _, err := s.runner.Run(ctx, s.command, args...); err != nil {
		return err
	}
	if _, err := os.Stat(out); err != nil {
		return fmt.Errorf("segmentation tool did not produce %s: %w", out, err)
	}
	return nil
}
