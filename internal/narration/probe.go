package narration

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/parallax-reel/internal/toolexec"
)

// Prober measures the playback duration of an audio file in seconds.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// FFProbe reads the container duration with ffprobe.
type FFProbe struct {
	runner  toolexec.Runner
	command string
}

// NewFFProbe creates a prober; command defaults to "ffprobe".
func NewFFProbe(runner toolexec.Runner, command string) *FFProbe {
	if command == "" {
		command = "ffprobe"
	}
	return &FFProbe{runner: runner, command: command}
}

// ProbeArgs returns the ffprobe arguments printing only the format duration.
func ProbeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

// Probe runs ffprobe on path.
func (p *FFProbe) Probe(ctx context.Context, path string) (float64, error) {
	out, err := p.runner.Run(ctx, p.command, ProbeArgs(path)...)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}
	return ParseDuration(out)
}

// ParseDuration parses the probe output. Only finite positive values are accepted.
func ParseDuration(out []byte) (float64, error) {
	s := strings.TrimSpace(string(out))
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable duration %q: %w", s, err)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
