// Package storyboard writes human review artifacts for a generated scenario:
// the raw scenario JSON and an HTML storyboard rendered from markdown.
package storyboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/jonathan/parallax-reel/internal/types"
)

// Artifact file names inside the output directory
const (
	ScenarioFile   = "scenario.json"
	StoryboardFile = "storyboard.html"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; line-height: 1.5; }
img { max-width: 240px; border-radius: 6px; }
code { white-space: pre-wrap; }
</style>
</head>
<body>
%s</body>
</html>
`

// Markdown renders the scenario as a markdown storyboard. Image links point
// at the beat originals relative to the output directory.
func Markdown(title string, sc *types.Scenario) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(title))
	fmt.Fprintf(&b, "%d beats\n\n", len(sc.Beats))

	for i, beat := range sc.Beats {
		fmt.Fprintf(&b, "## Beat %d: %s\n\n", i+1, escape(beat.Kind))
		fmt.Fprintf(&b, "![beat %d](beat_%d/original.png)\n\n", i, i)
		fmt.Fprintf(&b, "**Narration:** %s\n\n", escape(beat.NarrationText))
		fmt.Fprintf(&b, "**Image prompt:** %s\n\n", escape(beat.ImagePrompt))
	}
	return b.String()
}

// HTML converts the markdown storyboard into a standalone page.
func HTML(title string, sc *types.Scenario) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(title, sc)), &body); err != nil {
		return nil, fmt.Errorf("failed to render storyboard: %w", err)
	}
	return []byte(fmt.Sprintf(pageTemplate, html.EscapeString(title), body.String())), nil
}

// WriteArtifacts writes scenario.json and storyboard.html into dir unless
// they already exist. It returns the paths that were written.
func WriteArtifacts(dir, title string, sc *types.Scenario) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string

	scenarioPath := filepath.Join(dir, ScenarioFile)
	if !exists(scenarioPath) {
		data, err := json.MarshalIndent(sc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode scenario: %w", err)
		}
		if err := os.WriteFile(scenarioPath, append(data, '\n'), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", scenarioPath, err)
		}
		written = append(written, scenarioPath)
	}

	storyboardPath := filepath.Join(dir, StoryboardFile)
	if !exists(storyboardPath) {
		page, err := HTML(title, sc)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(storyboardPath, page, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", storyboardPath, err)
		}
		written = append(written, storyboardPath)
	}

	return written, nil
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"<", "&lt;",
	">", "&gt;",
	"\n", " ",
)

func escape(s string) string {
	return mdEscaper.Replace(strings.TrimSpace(s))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
