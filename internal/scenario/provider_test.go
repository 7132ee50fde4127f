package scenario

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/parallax-reel/internal/checkpoint"
	"github.com/jonathan/parallax-reel/internal/llm"
	"github.com/jonathan/parallax-reel/internal/types"
)

type fakeClient struct {
	response string
	err      error
	calls    int
	prompts  []string
	system   string
	json     bool
}

func (f *fakeClient) Complete(_ context.Context, prompt llm.Prompt) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt.User)
	f.system = prompt.System
	f.json = prompt.JSON
	return f.response, f.err
}

func (f *fakeClient) Model() string { return "fake-model" }

func (f *fakeClient) Close() error { return nil }

type fakeTopics struct {
	text string
	err  error
}

func (f *fakeTopics) TopicText(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

const validResponse = "```json\n" + `{"beats":[
	{"kind":"hook","narrationText":"Привет","imagePrompt":"a red fox on snow"},
	{"kind":"outro","narrationText":"Пока","imagePrompt":"an owl on a branch"}
]}` + "\n```"

func defaultRequest() Request {
	return Request{
		Topic:               "winter forest",
		BeatCount:           2,
		BeatSeconds:         5,
		NarrationLanguage:   "Russian",
		ImagePromptLanguage: "English",
	}
}

func TestObtain_GeneratesAndPersists(t *testing.T) {
	client := &fakeClient{response: validResponse}
	store := checkpoint.NewMemoryStore()
	provider := NewProvider(client, store, defaultRequest(), nil)
	state := types.NewPipelineState()

	sc, err := provider.Obtain(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, sc.Beats, 2)
	assert.Equal(t, "hook", sc.Beats[0].Kind)
	assert.Equal(t, "an owl on a branch", sc.Beats[1].ImagePrompt)

	assert.Equal(t, 1, client.calls)
	assert.Contains(t, client.prompts[0], "winter forest")
	assert.Contains(t, client.prompts[0], "Exactly 2 beats")
	assert.Contains(t, client.prompts[0], "about 10 seconds")
	assert.Contains(t, client.system, "scriptwriter")
	assert.True(t, client.json)

	assert.Equal(t, 1, store.Saves())
	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sc, saved.Scenario)
	assert.Equal(t, defaultRequest().Fingerprint(), saved.ScenarioFingerprint)
}

func TestObtain_CacheHitMakesNoCalls(t *testing.T) {
	client := &fakeClient{response: validResponse}
	store := checkpoint.NewMemoryStore()
	cached := &types.Scenario{Beats: []types.BeatPrompt{{Kind: "k", NarrationText: "n", ImagePrompt: "p"}}}
	state := types.NewPipelineState()
	state.Scenario = cached
	state.ScenarioFingerprint = "different"

	sc, err := NewProvider(client, store, defaultRequest(), nil).Obtain(context.Background(), state)
	require.NoError(t, err)

	assert.Same(t, cached, sc)
	assert.Equal(t, 0, client.calls)
	assert.Equal(t, 0, store.Saves())
}

func TestObtain_ParseErrorIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "not json", response: "Sure! Here is your scenario."},
		{name: "missing field", response: `{"beats":[{"kind":"hook","imagePrompt":"x"}]}`},
		{name: "unknown field", response: `{"beats":[{"kind":"hook","narrationText":"n","imagePrompt":"x","music":"y"}]}`},
		{name: "empty beats", response: `{"beats":[]}`},
		{name: "blank", response: "```json\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{response: tt.response}
			store := checkpoint.NewMemoryStore()
			state := types.NewPipelineState()

			_, err := NewProvider(client, store, defaultRequest(), nil).Obtain(context.Background(), state)
			require.Error(t, err)

			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr))
			assert.Equal(t, 1, client.calls, "generation is never retried")
			assert.Nil(t, state.Scenario)
			assert.Equal(t, 0, store.Saves())
		})
	}
}

func TestObtain_APIError(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}
	_, err := NewProvider(client, checkpoint.NewMemoryStore(), defaultRequest(), nil).
		Obtain(context.Background(), types.NewPipelineState())

	var apiErr *APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestObtain_TopicURLSeedsPrompt(t *testing.T) {
	client := &fakeClient{response: validResponse}
	req := defaultRequest()
	req.Topic = ""
	req.TopicURL = "https://example.com/foxes"
	topics := &fakeTopics{text: strings.Repeat("Foxes live in burrows. ", 500)}

	_, err := NewProvider(client, checkpoint.NewMemoryStore(), req, topics).
		Obtain(context.Background(), types.NewPipelineState())
	require.NoError(t, err)

	prompt := client.prompts[0]
	assert.Contains(t, prompt, "https://example.com/foxes")
	assert.Contains(t, prompt, "Foxes live in burrows.")
	assert.Less(t, len(prompt), 4000+3000)
}

func TestObtain_TopicFetchFailure(t *testing.T) {
	client := &fakeClient{response: validResponse}
	req := defaultRequest()
	req.TopicURL = "https://example.com/down"
	topics := &fakeTopics{err: errors.New("HTTP status 503")}

	_, err := NewProvider(client, checkpoint.NewMemoryStore(), req, topics).
		Obtain(context.Background(), types.NewPipelineState())
	require.Error(t, err)
	assert.Equal(t, 0, client.calls)
}

func TestObtain_RequiresTopic(t *testing.T) {
	client := &fakeClient{response: validResponse}
	req := defaultRequest()
	req.Topic = ""

	_, err := NewProvider(client, checkpoint.NewMemoryStore(), req, nil).
		Obtain(context.Background(), types.NewPipelineState())
	require.Error(t, err)
	assert.Equal(t, 0, client.calls)
}

func TestParseError_Excerpt(t *testing.T) {
	err := &ParseError{Reason: "decode", Raw: "Осьминог-осьминог"}
	assert.Equal(t, "Осьм…", err.Excerpt(4))
	assert.Equal(t, err.Raw, err.Excerpt(100))
	assert.Equal(t, "invalid scenario: decode", err.Error())
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	a := defaultRequest()
	b := defaultRequest()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 32)

	b.BeatCount = 6
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
