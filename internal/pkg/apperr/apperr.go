// internal/pkg/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the boundary layer
type Kind int

const (
	KindInternal Kind = iota
	KindNotAuthenticated
	KindNotAuthorized
	KindProductNotFound
	KindLineItemNotFound
	KindOrderNotFound
	KindInvalidInput
	KindConflict
	KindStorageUnavailable
	KindBillingUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindNotAuthorized:
		return "not_authorized"
	case KindProductNotFound:
		return "product_not_found"
	case KindLineItemNotFound:
		return "line_item_not_found"
	case KindOrderNotFound:
		return "order_not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindConflict:
		return "conflict"
	case KindStorageUnavailable:
		return "storage_unavailable"
	case KindBillingUnavailable:
		return "billing_unavailable"
	default:
		return "internal"
	}
}

// Error is a classified application error carrying a short human-readable message
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two application errors by kind and code, so sentinel values work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return e.Kind == t.Kind
}

// New creates an error of the given kind. The code defaults to the kind name.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Code: kind.String(), Message: message}
}

// Newf is New with formatting
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// WithCode returns a copy of e with a more specific code
func (e *Error) WithCode(code string) *Error {
	c := *e
	c.Code = code
	return &c
}

// WithMessage returns a copy of e with a different human-readable message
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// Wrap classifies an underlying error
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Code: kind.String(), Message: message, Err: err}
}

// Storage wraps a failure reported by a storage driver
func Storage(err error, op string) *Error {
	return Wrap(KindStorageUnavailable, err, fmt.Sprintf("failed to %s", op))
}

// KindOf reports the kind of err, or KindInternal for unclassified errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is classified as kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Sentinels shared across domains
var (
	ErrNotAuthenticated = New(KindNotAuthenticated, "authentication required")
	ErrNotAuthorized    = New(KindNotAuthorized, "you are not allowed to perform this action")
	ErrProductNotFound  = New(KindProductNotFound, "product not found")
	ErrLineItemNotFound = New(KindLineItemNotFound, "item not found in cart")
	ErrOrderNotFound    = New(KindOrderNotFound, "order not found")
	ErrInvalidID        = New(KindInvalidInput, "invalid identifier").WithCode("invalid_id")
	ErrNotFound         = New(KindInternal, "record not found").WithCode("record_not_found")
)
