package sequence

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyPerformed = errors.New("sequence already performed")
	ErrPanic            = errors.New("step panicked")
)

// StepError identifies the step (and item, for for-each steps) that failed.
// Index is -1 for singleton steps.
type StepError struct {
	Sequence string
	Step     string
	Index    int
	Revert   bool
	Err      error
}

func (e *StepError) Error() string {
	action := "perform"
	if e.Revert {
		action = "revert"
	}
	if e.Index < 0 {
		return fmt.Sprintf("%s/%s: %s failed: %v", e.Sequence, e.Step, action, e.Err)
	}
	return fmt.Sprintf("%s/%s[%d]: %s failed: %v", e.Sequence, e.Step, e.Index, action, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
