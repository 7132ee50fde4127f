package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Scenario is the ordered list of beats produced by the scenario model.
// It is immutable once stored in the checkpoint.
type Scenario struct {
	Beats []BeatPrompt `json:"beats" validate:"required,min=1,dive"`
}

// BeatPrompt is one narrated beat of a scenario.
type BeatPrompt struct {
	Kind          string `json:"kind" validate:"required"`
	NarrationText string `json:"narrationText" validate:"required"`
	ImagePrompt   string `json:"imagePrompt" validate:"required"`
}

// Validate runs struct-level checks on the scenario.
func (s *Scenario) Validate() error {
	if s == nil {
		return fmt.Errorf("scenario is nil")
	}
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}
	return nil
}
