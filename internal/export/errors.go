package export

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is returned for an action with no renderer configured.
var ErrUnknownAction = errors.New("unknown export action")

// Stage is the step of an action that failed.
type Stage string

const (
	StageLoad    Stage = "load"
	StagePersist Stage = "persist"
	StageRender  Stage = "render"
)

// ExportError reports a failed action. When Stage is StageRender the
// document was already persisted as RecordID and stays saved.
type ExportError struct {
	Action   Action
	Stage    Stage
	RecordID string
	Err      error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("export %s: %s failed (record %s): %v", e.Action, e.Stage, e.RecordID, e.Err)
	}
	return fmt.Sprintf("export %s: %s failed: %v", e.Action, e.Stage, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExportError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExportError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
