package storyboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/parallax-reel/internal/types"
)

var testScenario = &types.Scenario{Beats: []types.BeatPrompt{
	{Kind: "hook", NarrationText: "Octopuses have *three* hearts.", ImagePrompt: "an octopus, studio light"},
	{Kind: "fact", NarrationText: "Their blood is blue.", ImagePrompt: "<script>alert(1)</script> blue blood"},
}}

func TestMarkdown(t *testing.T) {
	md := Markdown("Octopus facts", testScenario)
	assert.Contains(t, md, "# Octopus facts")
	assert.Contains(t, md, "## Beat 1: hook")
	assert.Contains(t, md, "## Beat 2: fact")
	assert.Contains(t, md, `\*three\*`)
	assert.Contains(t, md, "beat_1/original.png")
}

func TestHTML(t *testing.T) {
	page, err := HTML("Octopus <facts>", testScenario)
	require.NoError(t, err)
	s := string(page)

	assert.Contains(t, s, "<title>Octopus &lt;facts&gt;</title>")
	assert.Contains(t, s, "<h2>Beat 1: hook</h2>")
	assert.Contains(t, s, "*three*")
	assert.NotContains(t, s, "<script>")
	assert.Contains(t, s, `<img src="beat_0/original.png" alt="beat 0">`)
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()

	written, err := WriteArtifacts(dir, "Octopus facts", testScenario)
	require.NoError(t, err)
	assert.Len(t, written, 2)

	data, err := os.ReadFile(filepath.Join(dir, ScenarioFile))
	require.NoError(t, err)
	var sc types.Scenario
	require.NoError(t, json.Unmarshal(data, &sc))
	assert.Equal(t, *testScenario, sc)
	assert.FileExists(t, filepath.Join(dir, StoryboardFile))

	written, err = WriteArtifacts(dir, "Octopus facts", testScenario)
	require.NoError(t, err)
	assert.Empty(t, written, "existing artifacts are kept")
}
