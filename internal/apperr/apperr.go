package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error by the pipeline stage that produced it.
type Kind int

const (
	KindValidation Kind = iota
	KindExtraction
	KindUpstream
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindExtraction:
		return "extraction"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error carries a machine-readable code and a message that is safe to show to callers.
type Error struct {
	Kind    Kind
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

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindExtraction:
		return http.StatusUnprocessableEntity
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Extraction(code, message string) *Error {
	return &Error{Kind: KindExtraction, Code: code, Message: message}
}

func Upstream(code, message string, cause error) *Error {
	return &Error{Kind: KindUpstream, Code: code, Message: message, Err: cause}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Status returns the HTTP status for err, defaulting to 400 for unclassified errors.
func Status(err error) int {
	if e, ok := As(err); ok {
		return e.Status()
	}
	return http.StatusBadRequest
}

// Code returns the machine-readable code for err, or fallback when err is unclassified.
func Code(err error, fallback string) string {
	if e, ok := As(err); ok && e.Code != "" {
		return e.Code
	}
	return fallback
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
