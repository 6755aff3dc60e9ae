// Package errs defines the stable error taxonomy shared by the keystore and
// consensus packages. Every exported failure from those packages is a *Error
// carrying a machine-checkable Kind alongside its English message, so a
// caller can switch on failure class without parsing strings.
package errs

import (
	"errors"
	"fmt"
)

// Kind discriminates the class of failure. Values are stable across
// releases; callers may compare them directly.
type Kind string

const (
	BadJSON                    Kind = "BadJSON"
	BadYAML                    Kind = "BadYAML"
	BadHex                     Kind = "BadHex"
	BadLength                  Kind = "BadLength"
	UnsupportedVersion         Kind = "UnsupportedVersion"
	UnsupportedKdf             Kind = "UnsupportedKdf"
	UnsupportedPrf             Kind = "UnsupportedPrf"
	UnsupportedCipher          Kind = "UnsupportedCipher"
	KdfParamError              Kind = "KdfParamError"
	PasswordVerificationFailed Kind = "PasswordVerificationFailed"
	SSZError                   Kind = "SSZError"
	SchemaError                Kind = "SchemaError"
	ConfigError                Kind = "ConfigError"
)

// Error is the typed error returned by every exported function in the
// keystore and consensus packages. It wraps an optional underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error that wraps an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is an *Error of the given kind. It supports
// errors wrapped with fmt.Errorf("%w", ...) and errors.Join.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
