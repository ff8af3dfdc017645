package perftop

import (
	"errors"
	"fmt"
)

// Error codes for the pipeline's failure taxonomy.
const (
	ErrTransport = "TRANSPORT"
	ErrMalformed = "MALFORMED"
	ErrAmbiguous = "AMBIGUOUS"
	ErrStale     = "STALE"
	ErrConfig    = "CONFIG"
	ErrNoData    = "NODATA"
)

// Error is a categorised pipeline failure. None of them are fatal to a widget loop.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func newError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(err error, code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err is an *Error carrying code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}
