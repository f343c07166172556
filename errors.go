package main

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrRunInFlight is returned when a pipeline for the same credentials is still running.
	ErrRunInFlight = errors.New("a pipeline run for these credentials is already in flight")

	// ErrLoginAborted means the login surface was closed before tokens were captured.
	ErrLoginAborted = errors.New("login aborted before tokens were captured")

	// ErrNoCredentials means a redirect URL did not carry both tokens.
	ErrNoCredentials = errors.New("no access_token/id_token pair in URL")
)

// =============================================================================
// Fatal Errors
// =============================================================================

// FatalError represents a failure that terminates the pipeline.
// Steps after user info surface every failure wrapped in this type.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// NewFatalError wraps an error as fatal.
func NewFatalError(err error) error {
	return &FatalError{Err: err}
}

// IsFatalError checks if the error should stop the pipeline.
func IsFatalError(err error) bool {
	if err == nil {
		return false
	}
	var fe *FatalError
	return errors.As(err, &fe)
}

// =============================================================================
// Failure taxonomy
// =============================================================================

// NetworkError is a transport-level failure: refused, reset, timed out.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "connection failed: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying failure was a deadline.
func (e *NetworkError) Timeout() bool {
	return isNetworkTimeout(e.Err) || strings.Contains(e.Err.Error(), "context deadline exceeded")
}

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed (code %d): %s", e.StatusCode, e.Body)
}

// ParseError means the body was not JSON or lacked an expected field.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("parse %s: field missing", e.Field)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StepError tags a failure with the pipeline step that produced it.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailureKind names which branch of the taxonomy an error belongs to.
// Untyped errors that look like transport failures count as network.
func FailureKind(err error) string {
	var (
		ne *NetworkError
		se *StatusError
		pe *ParseError
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &ne):
		return "network"
	case errors.As(err, &se):
		return "http_status"
	case errors.As(err, &pe):
		return "parse"
	case IsNetworkFailure(err):
		return "network"
	default:
		return "unknown"
	}
}

// =============================================================================
// Network classification
// =============================================================================

// networkErrorPatterns contains error substrings that indicate a transport failure.
var networkErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"i/o timeout",
	"context deadline exceeded",
	"context canceled",
	"TLS handshake timeout",
	"EOF",
	"malformed HTTP response",
	"transport connection broken",
	"use of closed network connection",
}

// IsNetworkFailure checks if err came from the transport rather than the server.
func IsNetworkFailure(err error) bool {
	if err == nil {
		return false
	}

	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}

	if isNetworkTimeout(err) {
		return true
	}

	return containsNetworkPattern(err.Error())
}

func isNetworkTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func containsNetworkPattern(errStr string) bool {
	for _, pattern := range networkErrorPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
