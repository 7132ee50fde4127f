// Package prompts holds the scenario prompt templates. Templates live in
// embedded JSON files mapping a key to text with {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

//go:embed *.json
var files embed.FS

// Prompt files and keys
const (
	ScenarioFile    = "scenario.json"
	KeyReelScenario = "reel-scenario"
	KeySystem       = "scenario-system"
	KeyTopicContext = "topic-context"
)

var placeholder = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

var (
	mu     sync.Mutex
	loaded = map[string]map[string]string{}
)

// Get returns the raw template stored under key in file.
func Get(file, key string) (string, error) {
	set, err := open(file)
	if err != nil {
		return "", err
	}
	text, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}
	return text, nil
}

// Render fills every placeholder of a template. Placeholders without a
// value are reported together.
func Render(file, key string, data map[string]string) (string, error) {
	text, err := Get(file, key)
	if err != nil {
		return "", err
	}

	var missing []string
	out := placeholder.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := data[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s/%s: unfilled placeholder %s", file, key, strings.Join(missing, ", "))
	}
	return out, nil
}

// ClearCache forgets parsed files so the next lookup re-reads them.
func ClearCache() {
	mu.Lock()
	loaded = map[string]map[string]string{}
	mu.Unlock()
}

func open(file string) (map[string]string, error) {
	mu.Lock()
	defer mu.Unlock()

	if set, ok := loaded[file]; ok {
		return set, nil
	}
	raw, err := files.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}
	var set map[string]string
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
	}
	loaded[file] = set
	return set, nil
}
