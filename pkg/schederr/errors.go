// Package schederr defines the structured error kinds the scheduler
// surfaces to its callers.
package schederr

import "fmt"

// Code identifies a scheduler error kind.
type Code string

const (
	CodeGraphInvariant     Code = "GRAPH_INVARIANT"
	CodeCycleUnresolvable  Code = "CYCLE_UNRESOLVABLE"
	CodeMergeUnresolvable  Code = "MERGE_UNRESOLVABLE"
	CodeRestarterRejected  Code = "RESTARTER_REJECTED"
	CodeTimeout            Code = "TIMEOUT"
	CodeCancelled          Code = "CANCELLED"
	CodeOsError            Code = "OS_ERROR"
)

// Error is a structured scheduler error.
type Error struct {
	Code    Code
	Message string
	// Unit, when non-empty, names the unit the error concerns.
	Unit string
	// Err wraps an underlying error, if any (e.g. the OS error beneath
	// CodeOsError).
	Err error
}

func (e *Error) Error() string {
	if e.Unit != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s (unit %s): %v", e.Code, e.Message, e.Unit, e.Err)
		}
		return fmt.Sprintf("%s: %s (unit %s)", e.Code, e.Message, e.Unit)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error with no wrapped cause.
func New(code Code, unit, message string) *Error {
	return &Error{Code: code, Unit: unit, Message: message}
}

// Wrap constructs an Error wrapping an underlying cause.
func Wrap(code Code, unit, message string, err error) *Error {
	return &Error{Code: code, Unit: unit, Message: message, Err: err}
}

// GraphInvariant reports a caller-supplied id or edge that violates a
// graph invariant. The current operation is aborted; state is left
// consistent.
func GraphInvariant(unit, message string) *Error {
	return New(CodeGraphInvariant, unit, message)
}

// CycleUnresolvable reports a transaction whose ordering cycle could not be
// broken because every unit on the cycle carries a goal_required job.
func CycleUnresolvable(message string) *Error {
	return New(CodeCycleUnresolvable, "", message)
}

// MergeUnresolvable reports two goal_required jobs on one unit that cannot
// be reconciled by the merge matrix.
func MergeUnresolvable(unit, message string) *Error {
	return New(CodeMergeUnresolvable, unit, message)
}

// RestarterRejected reports a Restarter returning synchronous failure for
// a job.
func RestarterRejected(unit, message string) *Error {
	return New(CodeRestarterRejected, unit, message)
}

// IsCode reports whether err is (or wraps) a scheduler *Error with the
// given code.
func IsCode(err error, code Code) bool {
	var se *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			se = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return se != nil && se.Code == code
}
