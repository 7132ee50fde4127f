package scenario

import "fmt"

// APICallError wraps a failed request to the scenario model.
type APICallError struct {
	Model string
	Err   error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("scenario model %s: %v", e.Model, e.Err)
}

func (e *APICallError) Unwrap() error { return e.Err }

// ParseError means the model answered with something that is not a usable
// scenario. Generation is not retried; Raw keeps the answer for inspection.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "invalid scenario: " + e.Reason
	}
	return fmt.Sprintf("invalid scenario: %s: %v", e.Reason, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Excerpt returns the start of the raw answer, at most n runes.
func (e *ParseError) Excerpt(n int) string {
	r := []rune(e.Raw)
	if len(r) <= n {
		return e.Raw
	}
	return string(r[:n]) + "…"
}
