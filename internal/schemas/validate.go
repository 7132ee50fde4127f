// Package schemas checks scenario documents and checkpoints against the
// embedded JSON Schemas before they enter the pipeline.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	schemafiles "github.com/jonathan/parallax-reel/schemas"
)

// Issue is one schema violation, addressed by its JSON path.
type Issue struct {
	Path   string
	Reason string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Document string
	Issues   []Issue
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s does not match schema (%d issues)", e.Document, len(e.Issues))
	for _, issue := range e.Issues {
		fmt.Fprintf(&sb, "\n  - %s: %s", issue.Path, issue.Reason)
	}
	return sb.String()
}

// SchemaError means the document could not be checked at all: the schema is
// missing or broken, or the input is not JSON.
type SchemaError struct {
	Document string
	Err      error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("cannot check %s: %v", e.Document, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

var (
	compiledMu sync.Mutex
	compiled   = map[string]*gojsonschema.Schema{}
)

// ValidateScenario checks a raw scenario document produced by the language model.
func ValidateScenario(doc string) error {
	return check(schemafiles.ScenarioSchema, "scenario", gojsonschema.NewStringLoader(doc))
}

// ValidateCheckpoint checks a serialized pipeline state before it is trusted.
func ValidateCheckpoint(doc []byte) error {
	return check(schemafiles.CheckpointSchema, "checkpoint", gojsonschema.NewBytesLoader(doc))
}

func check(file, document string, loader gojsonschema.JSONLoader) error {
	schema, err := load(file)
	if err != nil {
		return &SchemaError{Document: document, Err: err}
	}

	result, err := schema.Validate(loader)
	if err != nil {
		return &SchemaError{Document: document, Err: err}
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Document: document}
	for _, re := range result.Errors() {
		path := re.Field()
		if path == "" || path == "(root)" {
			path = "$"
		}
		verr.Issues = append(verr.Issues, Issue{Path: path, Reason: re.Description()})
	}
	return verr
}

// load compiles an embedded schema once and reuses it afterwards.
func load(file string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[file]; ok {
		return s, nil
	}
	raw, err := schemafiles.Files.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("embedded schema %s: %w", file, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", file, err)
	}
	compiled[file] = s
	return s, nil
}
