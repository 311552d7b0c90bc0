// Package apierr defines the API error catalog: every error leaving an HTTP
// handler carries a stable machine-readable code next to its status and
// message, so clients can branch on codes instead of parsing text.
package apierr

import "fmt"

// Error pairs a catalog code with an HTTP status and a client-facing
// message. An optional cause is kept for logs and errors.Is chains but is
// never serialized to the client.
type Error struct {
	code    Code
	status  int
	message string
	cause   error
}

// New builds a catalog error with no underlying cause.
func New(code Code, status int, message string) *Error {
	return &Error{code: code, status: status, message: message}
}

// Wrap builds a catalog error around an underlying cause.
func Wrap(code Code, status int, message string, cause error) *Error {
	return &Error{code: code, status: status, message: message, cause: cause}
}

// Accessors rather than exported fields: an Error is immutable once built.

func (e *Error) Code() Code      { return e.code }
func (e *Error) Status() int     { return e.status }
func (e *Error) Message() string { return e.message }
func (e *Error) Unwrap() error   { return e.cause }

// Error renders code, message and cause for log output. The client never
// sees this string; Response is the wire shape.
func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
	return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
}

// ErrorResponse is the JSON envelope written to the client.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the code/message pair inside the envelope.
type ErrorBody struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Response converts the error to its wire shape.
func (e *Error) Response() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: e.code, Message: e.message}}
}
