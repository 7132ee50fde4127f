package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScenario(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", `{"beats":[{"kind":"hook","narrationText":"Hello","imagePrompt":"a fox"}]}`, false},
		{"missing narration", `{"beats":[{"kind":"hook","imagePrompt":"a fox"}]}`, true},
		{"unknown field", `{"beats":[{"kind":"hook","narrationText":"x","imagePrompt":"a fox","mood":"calm"}]}`, true},
		{"no beats", `{"beats":[]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScenario(tt.doc)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "scenario", verr.Document)
			assert.NotEmpty(t, verr.Issues)
		})
	}
}

func TestValidateScenario_NotJSON(t *testing.T) {
	err := ValidateScenario(`not json`)
	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, err.Error(), "cannot check scenario")
}

func TestValidateCheckpoint(t *testing.T) {
	valid := []byte(`{
		"version": 1,
		"run_id": "550e8400-e29b-41d4-a716-446655440000",
		"beats": [{"index": 0, "completed": true, "durationSeconds": 4.2, "stages": {"image": "done"}}],
		"completed": false
	}`)
	assert.NoError(t, ValidateCheckpoint(valid))
	// Second call goes through the compiled cache.
	assert.NoError(t, ValidateCheckpoint(valid))

	badStage := []byte(`{
		"version": 1,
		"run_id": "x",
		"beats": [{"index": 0, "completed": true, "stages": {"image": "finished"}}],
		"completed": false
	}`)
	assert.Error(t, ValidateCheckpoint(badStage))

	zeroDuration := []byte(`{
		"version": 1,
		"run_id": "x",
		"beats": [{"index": 0, "completed": true, "durationSeconds": 0}],
		"completed": false
	}`)
	assert.Error(t, ValidateCheckpoint(zeroDuration))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Document: "scenario", Issues: []Issue{{Path: "beats.0.kind", Reason: "is required"}}}
	assert.Contains(t, err.Error(), "scenario does not match schema (1 issues)")
	assert.Contains(t, err.Error(), "- beats.0.kind: is required")
}

func TestSchemaError_Unwrap(t *testing.T) {
	err := &SchemaError{Document: "checkpoint", Err: assert.AnError}
	assert.ErrorIs(t, err, assert.AnError)
}
