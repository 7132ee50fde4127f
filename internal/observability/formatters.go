// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/parallax-reel/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// PrintScenario outputs the beats of a scenario.
func (p *Printer) PrintScenario(sc *types.Scenario) {
	if sc == nil || len(sc.Beats) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Beats: %d\n\n", len(sc.Beats)))

	count := min(len(sc.Beats), maxItemsToShow)
	for i := 0; i < count; i++ {
		beat := sc.Beats[i]
		sb.WriteString(fmt.Sprintf("#%d  [%s]\n", i+1, beat.Kind))
		sb.WriteString(fmt.Sprintf("    %s\n", truncate(beat.NarrationText, 50)))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(sc.Beats) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more beats", len(sc.Beats)-maxItemsToShow))
	}

	p.printBox("SCENARIO", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBeat outputs the artifacts and pivot of a processed beat.
func (p *Printer) PrintBeat(rec *types.BeatRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Kind:       %s\n", rec.Kind))
	sb.WriteString(fmt.Sprintf("Original:   %s\n", rec.OriginalImagePath))
	sb.WriteString(fmt.Sprintf("Object:     %s\n", rec.ObjectImagePath))
	sb.WriteString(fmt.Sprintf("Background: %s\n", rec.BackgroundImagePath))
	sb.WriteString(fmt.Sprintf("Pivot:      (%.1f, %.1f) in %dx%d\n",
		rec.Pivot.X, rec.Pivot.Y, rec.Dimensions.Width, rec.Dimensions.Height))
	if rec.AudioPath != "" {
		sb.WriteString(fmt.Sprintf("Audio:      %s\n", rec.AudioPath))
	}
	if rec.HasDuration() {
		sb.WriteString(fmt.Sprintf("Duration:   %.2fs\n", rec.Duration()))
	}

	p.printBox(fmt.Sprintf("BEAT %d", rec.Index), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStatus outputs per-beat stage progress of a checkpoint.
func (p *Printer) PrintStatus(state *types.PipelineState) {
	if state == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", state.RunID))
	scenarioBeats := 0
	if state.Scenario != nil {
		scenarioBeats = len(state.Scenario.Beats)
	}
	sb.WriteString(fmt.Sprintf("Scenario:  %d beats\n", scenarioBeats))
	sb.WriteString(fmt.Sprintf("Completed: %t\n", state.Completed))

	if len(state.Beats) > 0 {
		sb.WriteString("\n")
	}
	for _, b := range state.Beats {
		marks := make([]string, 0, len(types.AllStages))
		for _, stage := range types.AllStages {
			marks = append(marks, stageMark(b.Status(stage))+string(stage))
		}
		sb.WriteString(fmt.Sprintf("#%d %s\n", b.Index, strings.Join(marks, " ")))
	}

	p.printBox("PIPELINE STATUS", strings.TrimSuffix(sb.String(), "\n"))
}

func stageMark(status types.StageStatus) string {
	if status == types.StatusDone {
		return "✓"
	}
	return "·"
}

// PrintTimeline outputs the frame placement of each beat.
func (p *Printer) PrintTimeline(doc *types.ReelDocument) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("FPS: %d   Frames: %d   Duration: %.2fs\n", doc.FPS, doc.TotalFrames, doc.TotalDuration))
	sb.WriteString(fmt.Sprintf("Mean beat: %.2fs\n\n", doc.MeanDuration))

	for _, e := range doc.Timeline {
		sb.WriteString(fmt.Sprintf("beat %-3d start %-6d length %d\n", e.BeatIndex, e.StartFrame, e.LengthFrames))
	}

	p.printBox("TIMELINE", strings.TrimSuffix(sb.String(), "\n"))
}
