package services

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput      = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8 text")
	ErrNoValidRows     = errors.New("No valid review data found after processing")
)

// InputError reports a structural problem with an uploaded file. It is the
// rejected-input error surfaced to callers; Line is 0 when not applicable.
type InputError struct {
	Line        int
	Message     string
	Suggestions []string
	Err         error
}

func (e *InputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func (e *InputError) Unwrap() error { return e.Err }

var defaultSuggestions = []string{
	"Ensure file is a valid CSV",
	"Check that required columns exist",
	"Verify data format matches expected types",
	"Make sure text with commas is properly quoted",
}

func newInputError(line int, err error, msg string, suggestions ...string) *InputError {
	if len(suggestions) == 0 {
		suggestions = defaultSuggestions
	}
	return &InputError{Line: line, Message: msg, Suggestions: suggestions, Err: err}
}
