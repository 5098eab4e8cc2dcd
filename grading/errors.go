package grading

import (
	"errors"
	"fmt"
)

// ErrUnknownQuestion is returned when the graded qid is not in the catalog.
var ErrUnknownQuestion = errors.New("grading: unknown question")

// BadLetterError is returned when a selected option letter is not one of
// A, B, C, D (case-insensitively).
type BadLetterError struct {
	Letter string
}

func (e *BadLetterError) Error() string {
	return fmt.Sprintf("grading: %q is not a valid option letter (want A-D)", e.Letter)
}
