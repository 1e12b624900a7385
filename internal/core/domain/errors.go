package domain

import "fmt"

// Kind classifies failures so transports can map them to stable responses.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInvalidInput
	KindConflict
	KindAuth
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "unauthorized"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is the error type returned by core operations.
// errors.Is matches any two Errors of the same Kind, so callers can test
// against the sentinels below.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

var (
	ErrNotFound     = &Error{Kind: KindNotFound, Code: "not_found", Message: "Not found"}
	ErrInvalidInput = &Error{Kind: KindInvalidInput, Code: "invalid_input", Message: "Invalid input"}
	ErrConflict     = &Error{Kind: KindConflict, Code: "conflict", Message: "Conflict"}
	ErrAuth         = &Error{Kind: KindAuth, Code: "unauthorized", Message: "Unauthorized"}
	ErrPersistence  = &Error{Kind: KindPersistence, Code: "persistence", Message: "Storage unavailable"}

	ErrCartEmpty = &Error{Kind: KindInvalidInput, Code: "cart_empty", Message: "Cart is empty"}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != t.Kind.String() {
		return e.Kind == t.Kind && e.Code == t.Code
	}
	return e.Kind == t.Kind
}

func NotFound(code, message string) error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func InvalidInput(code, message string) error {
	return &Error{Kind: KindInvalidInput, Code: code, Message: message}
}

func Conflict(code, message string) error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func Unauthorized(code, message string) error {
	return &Error{Kind: KindAuth, Code: code, Message: message}
}

// Persistence wraps a storage failure that no fallback could absorb.
func Persistence(message string, err error) error {
	return &Error{Kind: KindPersistence, Code: "persistence", Message: message, Err: err}
}
