package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures. NotFound and Validation surface to
// callers immediately; External failures are converted to in-band error
// payloads by the stage that caught them; Internal rolls back the
// enclosing transaction.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindExternal   Kind = "external"
	KindInternal   Kind = "internal"
)

type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func NotFoundf(code string, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Err: fmt.Errorf(format, args...)}
}

func Validationf(code string, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Err: fmt.Errorf(format, args...)}
}

func Externalf(code string, format string, args ...any) *Error {
	return &Error{Kind: KindExternal, Code: code, Err: fmt.Errorf(format, args...)}
}

func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
