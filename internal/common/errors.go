// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Common application errors.
var (
	// Transport and API errors.
	ErrTransport    = errors.New("network request failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")

	// Validation errors.
	ErrValidation = errors.New("validation failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// APIError carries the structured error body returned by the payments API.
type APIError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError classifies an HTTP status and wraps it with the server message.
func NewAPIError(statusCode int, message string) *APIError {
	var kind error
	switch {
	case statusCode == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case statusCode == http.StatusNotFound:
		kind = ErrNotFound
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity:
		kind = ErrValidation
	case statusCode >= http.StatusInternalServerError:
		kind = ErrServer
	}
	return &APIError{StatusCode: statusCode, Message: message, Err: kind}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err was caused by bad input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// Message returns the text to show inline for err: the server message for API
// errors, the user message for user errors, err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrServer) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
