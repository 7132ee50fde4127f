package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/parallax-reel/internal/checkpoint"
)

// ErrValidation indicates a malformed request parameter
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrFrameOutOfRange indicates a frame outside the reel or beat
type ErrFrameOutOfRange struct {
	Frame int
	Total int
}

func (e *ErrFrameOutOfRange) Error() string {
	return fmt.Sprintf("frame %d out of range [0, %d)", e.Frame, e.Total)
}

// ErrBeatNotFound indicates a beat missing from the reel document
type ErrBeatNotFound struct {
	Index int
}

func (e *ErrBeatNotFound) Error() string {
	return fmt.Sprintf("beat %d not in reel", e.Index)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var outOfRange *ErrFrameOutOfRange
	var notFound *ErrBeatNotFound
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &outOfRange), errors.As(err, &notFound), errors.Is(err, checkpoint.ErrNoReel):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
