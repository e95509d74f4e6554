// Package errors defines the typed application errors shared across the
// service layers. Each error carries a code that the HTTP layer maps to a
// response status.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown    = "UNKNOWN"
	CodeValidation = "VALIDATION"
	CodeConfig     = "CONFIG"
	CodeUpstream   = "UPSTREAM"
	CodeNotFound   = "NOT_FOUND"
	CodeDatabase   = "DATABASE"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a basic application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the application error code of err,
// or CodeUnknown if it doesn't carry one.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// Specific error types and constructors

// ValidationError indicates malformed or missing request input.
type ValidationError struct {
	base Error
}

func (e *ValidationError) Error() string {
	return e.base.Error()
}

func (e *ValidationError) Code() string {
	return e.base.Code()
}

func (e *ValidationError) Unwrap() error {
	return e.base.Unwrap()
}

func NewValidationError(message string, cause error) error {
	return &ValidationError{
		base: Error{
			code:    CodeValidation,
			message: message,
			err:     cause,
		},
	}
}

// ConfigError indicates the server is missing required configuration,
// such as the completion provider credential.
type ConfigError struct {
	base Error
}

func (e *ConfigError) Error() string {
	return e.base.Error()
}

func (e *ConfigError) Code() string {
	return e.base.Code()
}

func (e *ConfigError) Unwrap() error {
	return e.base.Unwrap()
}

func NewConfigError(message string, cause error) error {
	return &ConfigError{
		base: Error{
			code:    CodeConfig,
			message: message,
			err:     cause,
		},
	}
}

// UpstreamError indicates a non-success response from the completion API.
// Body carries the raw upstream response body for diagnostics.
type UpstreamError struct {
	base Error
	Body string
}

func (e *UpstreamError) Error() string {
	return e.base.Error()
}

func (e *UpstreamError) Code() string {
	return e.base.Code()
}

func (e *UpstreamError) Unwrap() error {
	return e.base.Unwrap()
}

func NewUpstreamError(message, body string, cause error) error {
	return &UpstreamError{
		base: Error{
			code:    CodeUpstream,
			message: message,
			err:     cause,
		},
		Body: body,
	}
}

// UpstreamBody extracts the raw upstream response body from err,
// or an empty string when err is not an UpstreamError.
func UpstreamBody(err error) string {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Body
	}

	return ""
}

// NotFoundError indicates a request for a conversation that does not exist.
type NotFoundError struct {
	base Error
}

func (e *NotFoundError) Error() string {
	return e.base.Error()
}

func (e *NotFoundError) Code() string {
	return e.base.Code()
}

func (e *NotFoundError) Unwrap() error {
	return e.base.Unwrap()
}

func NewNotFoundError(message string) error {
	return &NotFoundError{
		base: Error{
			code:    CodeNotFound,
			message: message,
		},
	}
}

// DatabaseError indicates a store-level failure. The request paths never
// surface these to clients; they degrade to "not saved" instead.
type DatabaseError struct {
	base Error
}

func (e *DatabaseError) Error() string {
	return e.base.Error()
}

func (e *DatabaseError) Code() string {
	return e.base.Code()
}

func (e *DatabaseError) Unwrap() error {
	return e.base.Unwrap()
}

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{
		base: Error{
			code:    CodeDatabase,
			message: message,
			err:     cause,
		},
	}
}
