package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioData() map[string]string {
	return map[string]string{
		"Topic":               "a lighthouse keeper",
		"TopicContext":        "",
		"BeatCount":           "5",
		"BeatSeconds":         "5",
		"TotalSeconds":        "25",
		"NarrationLanguage":   "Russian",
		"ImagePromptLanguage": "English",
	}
}

func TestGet(t *testing.T) {
	ClearCache()

	text, err := Get(ScenarioFile, KeyReelScenario)
	require.NoError(t, err)
	assert.Contains(t, text, "{{.Topic}}")
	assert.Contains(t, text, "ONE clearly separable main subject")

	system, err := Get(ScenarioFile, KeySystem)
	require.NoError(t, err)
	assert.Contains(t, system, "JSON")

	_, err = Get("nonexistent.json", "x")
	assert.ErrorContains(t, err, "failed to read prompt file")

	_, err = Get(ScenarioFile, "nonexistent-key")
	assert.ErrorContains(t, err, "not found")
}

func TestRender(t *testing.T) {
	ClearCache()

	out, err := Render(ScenarioFile, KeyReelScenario, scenarioData())
	require.NoError(t, err)
	assert.Contains(t, out, "a lighthouse keeper")
	assert.Contains(t, out, "Exactly 5 beats")
	assert.NotContains(t, out, "{{.")

	data := scenarioData()
	delete(data, "BeatCount")
	delete(data, "NarrationLanguage")
	_, err = Render(ScenarioFile, KeyReelScenario, data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unfilled placeholder")
	assert.Contains(t, err.Error(), "BeatCount")
	assert.Contains(t, err.Error(), "NarrationLanguage")
}
