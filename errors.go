package synergy

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	// ErrInvalidInput: negative or non-finite count, unknown or duplicate
	// variable, empty region key or empty target subset.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivision: the counts sum to zero, so no rate is defined.
	ErrDivision = errors.New("division by zero total")

	// ErrInvariant: a computed result violates one of the laws Verify checks.
	ErrInvariant = errors.New("invariant violated")
)

// Error codes carried by *Error, stable for transport layers.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeDivision     = "DIVISION_ERROR"
	CodeInvariant    = "INVARIANT_VIOLATED"
)

// Error describes which check failed and on what value.
type Error struct {
	Code    string
	Op      string
	Value   any
	Message string
	kind    error
}

func (e *Error) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("synergy: %s: %s (value: %v)", e.Op, e.Message, e.Value)
	}
	return fmt.Sprintf("synergy: %s: %s", e.Op, e.Message)
}

// Unwrap returns the error kind sentinel.
func (e *Error) Unwrap() error {
	return e.kind
}

// CodeOf returns the code of an *Error in err's chain, or "" if none.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func invalidInput(op string, value any, msg string) error {
	return &Error{Code: CodeInvalidInput, Op: op, Value: value, Message: msg, kind: ErrInvalidInput}
}

func divisionError(op string, msg string) error {
	return &Error{Code: CodeDivision, Op: op, Value: int64(0), Message: msg, kind: ErrDivision}
}

func invariantError(check string, value any, msg string) error {
	return &Error{Code: CodeInvariant, Op: check, Value: value, Message: msg, kind: ErrInvariant}
}

// withOp re-labels an *Error with the caller's operation and input.
func withOp(err error, op string, value any) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	msg := e.Message
	if e.Value != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Value)
	}
	return &Error{Code: e.Code, Op: op, Value: value, Message: msg, kind: e.kind}
}
