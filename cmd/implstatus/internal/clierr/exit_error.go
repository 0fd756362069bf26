// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clierr maps command failures to process exit codes.
package clierr

import (
	"errors"
	"fmt"
)

// Exit codes returned by implstatus.
const (
	ExitFailure         = 1
	ExitUsage           = 2
	ExitMissingRoot     = 3
	ExitInvalidRegistry = 4
	ExitBelowThreshold  = 5
)

// ExitCoder is an error that knows its process exit code.
type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError is an error that carries an explicit process exit code.
// It supports wrapping via Unwrap so errors.Is/As work as expected.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

// Unwrap enables errors.Is/As to traverse the underlying cause.
func (e *ExitError) Unwrap() error { return e.cause }

// New creates an ExitError with a message.
func New(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// Newf is a formatted variant.
func Newf(code int, format string, args ...any) error {
	return &ExitError{code: normalize(code), msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an ExitError that wraps an underlying cause.
func Wrap(code int, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// ExitCodeOf extracts an exit code from any error, defaulting to ExitFailure.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitFailure
}

func normalize(code int) int {
	// 0 means success; errors never carry it.
	if code <= 0 {
		return ExitFailure
	}
	return code
}
