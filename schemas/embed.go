// Package schemas holds the JSON Schema documents for the pipeline's persisted artifacts.
package schemas

import "embed"

// Files contains every *.schema.json document in this directory.
//
//go:embed *.schema.json
var Files embed.FS

// Schema file names
const (
	ScenarioSchema   = "scenario.schema.json"
	CheckpointSchema = "checkpoint.schema.json"
)
