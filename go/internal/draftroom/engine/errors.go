package engine

import (
	"errors"
	"fmt"
)

// Code identifies a validation failure. Validation errors are client-caused,
// recoverable, and reported to the offending session only; they never
// mutate draft state.
type Code string

const (
	CodeNotYourTurn        Code = "NOT_YOUR_TURN"
	CodeAlreadyDrafted     Code = "ALREADY_DRAFTED"
	CodeNoAvailableSlot    Code = "NO_AVAILABLE_SLOT"
	CodeInsufficientBudget Code = "INSUFFICIENT_BUDGET"
	CodeDraftNotActive     Code = "DRAFT_NOT_ACTIVE"
	CodeCellNotFound       Code = "CELL_NOT_FOUND"
	CodeRoomNotFound       Code = "ROOM_NOT_FOUND"
	CodeDraftNotFound      Code = "DRAFT_NOT_FOUND"
	CodeEntryNotOwned      Code = "ENTRY_NOT_OWNED"
)

// ValidationError rejects a client intent with a machine-readable code.
type ValidationError struct {
	Code    Code
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(code Code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// StateError is an engine-internal invariant breach. It should never occur
// while the single-writer discipline holds; the room is marked errored
// rather than allowed to continue on corrupt state.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return "draft state invariant violated: " + e.Message
}

func newStateError(format string, args ...any) *StateError {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}
