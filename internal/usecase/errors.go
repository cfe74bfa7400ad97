package usecase

import "fmt"

type ErrorCode string

const (
	// ErrorConfig means the upstream API key is missing; nothing was sent.
	ErrorConfig ErrorCode = "CONFIG_ERROR"
	// ErrorUpstream means the call completed but returned no usable answer.
	ErrorUpstream ErrorCode = "UPSTREAM_ERROR"
	// ErrorInternal covers unexpected failures: network, malformed JSON.
	ErrorInternal ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error

	// Solution carries the markup-wrapped error string shown to the caller
	// when Code is ErrorUpstream.
	Solution string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
