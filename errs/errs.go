// Package errs classifies the recoverable failures the wallet can run into.
//
// Nothing in harbor is fatal to the process: every Kind maps to a notice the
// CLI prints before returning the user to a usable state.
package errs

import (
	"errors"
	"fmt"
)

// Kind is the category of a wallet failure.
type Kind int

const (
	Unknown Kind = iota
	Validation
	UnsupportedNetwork
	TransientFetch
	UserRejection
	SubmissionFailure
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Validation:
		return "VALIDATION"
	case UnsupportedNetwork:
		return "UNSUPPORTED_NETWORK"
	case TransientFetch:
		return "TRANSIENT_FETCH"
	case UserRejection:
		return "USER_REJECTION"
	case SubmissionFailure:
		return "SUBMISSION_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Error is a categorized wallet error.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "balances.fetch"
	Msg  string // user-facing message
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an error of the given kind.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap attaches a kind and operation to err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message of err, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
