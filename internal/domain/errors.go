package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the coarse class of a failure, used by the HTTP layer to pick a status code.
type ErrorKind int

// Error kinds
const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindAlreadyExists
	KindValidation
	KindUnauthorized
	KindForbidden
	KindConflict
	KindInsufficientBalance
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindValidation:
		return "validation_error"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInsufficientBalance:
		return "insufficient_balance"
	default:
		return "internal_error"
	}
}

// Error is a business or infrastructure failure with a stable code.
// Two Errors match under errors.Is when their codes are equal.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors. Use Errorf to attach a specific message.
var (
	ErrNotFound            = &Error{Kind: KindNotFound, Code: "not_found", Message: "not found"}
	ErrAccountNotFound     = &Error{Kind: KindNotFound, Code: "account_not_found", Message: "account not found"}
	ErrAlreadyExists       = &Error{Kind: KindAlreadyExists, Code: "already_exists", Message: "already exists"}
	ErrValidation          = &Error{Kind: KindValidation, Code: "validation_error", Message: "invalid request"}
	ErrCapacityExceeded    = &Error{Kind: KindValidation, Code: "capacity_exceeded", Message: "tournament has reached its maximum participants"}
	ErrIneligibleLevel     = &Error{Kind: KindValidation, Code: "ineligible_level", Message: "player level must be at least 30"}
	ErrCapacityViolation   = &Error{Kind: KindValidation, Code: "capacity_violation", Message: "cannot reduce max participants below current participant count"}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Code: "unauthorized", Message: "unauthorized"}
	ErrForbidden           = &Error{Kind: KindForbidden, Code: "forbidden", Message: "forbidden"}
	ErrAlreadyParticipated = &Error{Kind: KindConflict, Code: "already_participated", Message: "already participated in tournament"}
	ErrDuplicateReward     = &Error{Kind: KindConflict, Code: "duplicate_reward", Message: "kill reward already granted"}
	ErrAlreadyEnded        = &Error{Kind: KindConflict, Code: "already_ended", Message: "tournament has already ended"}
	ErrNotAParticipant     = &Error{Kind: KindConflict, Code: "not_a_participant", Message: "user is not a participant in this tournament"}
	ErrHasParticipants     = &Error{Kind: KindConflict, Code: "has_participants", Message: "cannot delete tournament with participants"}
	ErrGameInUse           = &Error{Kind: KindConflict, Code: "game_in_use", Message: "game is used by tournaments"}
	ErrInsufficientBalance = &Error{Kind: KindInsufficientBalance, Code: "insufficient_balance", Message: "insufficient balance"}
	ErrInternal            = &Error{Kind: KindInternal, Code: "internal_error", Message: "internal error"}
)

// Errorf returns a copy of sentinel with a formatted message
func Errorf(sentinel *Error, format string, args ...any) *Error {
	return &Error{Kind: sentinel.Kind, Code: sentinel.Code, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected store or transport failure
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Code: ErrInternal.Code, Message: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in err's chain, or the internal code
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternal.Code
}

// PublicMessage is the text safe to show a caller. Internal failures never
// leak their cause.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return ErrInternal.Message
}
