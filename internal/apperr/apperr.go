package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidCredentials
	KindUnauthorized
	KindInvalidToken
	KindTokenExpired
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindUnauthorized:
		return "Unauthorized"
	case KindInvalidToken:
		return "InvalidToken"
	case KindTokenExpired:
		return "TokenExpired"
	case KindConflict:
		return "Conflict"
	case KindNotFound:
		return "NotFound"
	default:
		return "Internal"
	}
}

// Status is the HTTP status a kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthorized, KindInvalidToken, KindTokenExpired:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failure classified into exactly one Kind. Msg is safe to show
// to the caller; Err is the cause and is only ever logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the package sentinels work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Msg: "validation error"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Msg: "invalid user credentials"}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized, Msg: "unauthorized request"}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Msg: "invalid token"}
	ErrTokenExpired       = &Error{Kind: KindTokenExpired, Msg: "refresh token is expired or used"}
	ErrConflict           = &Error{Kind: KindConflict, Msg: "conflict"}
	ErrNotFound           = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrInternal           = &Error{Kind: KindInternal, Msg: "internal server error"}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Validation(msg string) *Error { return New(KindValidation, msg) }

func Conflict(msg string) *Error { return New(KindConflict, msg) }

func NotFound(msg string) *Error { return New(KindNotFound, msg) }

// Internal hides cause behind a generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Msg: ErrInternal.Msg, Err: cause}
}

// KindOf reports the kind of err; anything unclassified is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage is the text a caller may see for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return ErrInternal.Msg
}
