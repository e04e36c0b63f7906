package engine

import "fmt"

// Kind classifies an engine error for transport mapping.
type Kind string

const (
	KindNotFound    Kind = "NOT_FOUND"
	KindConflict    Kind = "CONFLICT"
	KindValidation  Kind = "VALIDATION"
	KindUnavailable Kind = "UNAVAILABLE"
)

// Code names the specific rule that rejected an operation.
type Code string

const (
	CodeNotFound                 Code = "NotFound"
	CodeVolunteerAlreadyAssigned Code = "VolunteerAlreadyAssigned"
	CodeDuplicateInRequest       Code = "DuplicateInRequest"
	CodeVolunteerUnavailable     Code = "VolunteerUnavailable"
	CodeInvalidInput             Code = "InvalidInput"
	CodeNoAssignment             Code = "NoAssignment"
	CodeNoEligibleAssignment     Code = "NoEligibleAssignment"
	CodeAlreadyCheckedIn         Code = "AlreadyCheckedIn"
	CodeAlreadyCheckedOut        Code = "AlreadyCheckedOut"
	CodeNotCheckedIn             Code = "NotCheckedIn"
	CodeAlreadyRecorded          Code = "AlreadyRecorded"
	CodeDuplicatePendingSwap     Code = "DuplicatePendingSwap"
	CodeAlreadyResolved          Code = "AlreadyResolved"
)

// Error is the structured failure every engine operation returns. It carries
// enough identifying context for the caller to report the failure without
// re-querying; Index is the offending position within a bulk request, -1
// otherwise.
type Error struct {
	Kind        Kind   `json:"kind"`
	Code        Code   `json:"code"`
	Message     string `json:"message"`
	VolunteerID uint   `json:"volunteer_id,omitempty"`
	SessionID   uint   `json:"session_id,omitempty"`
	Index       int    `json:"index"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(kind Kind, code Code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...), Index: -1}
}

func (e *Error) withPair(volunteerID, sessionID uint) *Error {
	e.VolunteerID = volunteerID
	e.SessionID = sessionID
	return e
}

func (e *Error) withIndex(i int) *Error {
	e.Index = i
	return e
}

func notFound(format string, args ...any) *Error {
	return newError(KindNotFound, CodeNotFound, format, args...)
}

func conflict(code Code, format string, args ...any) *Error {
	return newError(KindConflict, code, format, args...)
}

func invalid(format string, args ...any) *Error {
	return newError(KindValidation, CodeInvalidInput, format, args...)
}

func unavailable(format string, args ...any) *Error {
	return newError(KindUnavailable, CodeVolunteerUnavailable, format, args...)
}

// ErrKind reports the Kind of err if it is an engine error.
func ErrKind(err error) (Kind, bool) {
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return "", false
}

// ErrCode reports the Code of err if it is an engine error.
func ErrCode(err error) (Code, bool) {
	if e, ok := err.(*Error); ok {
		return e.Code, true
	}
	return "", false
}
