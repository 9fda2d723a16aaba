package transport

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned when the rate limit gate refuses a request.
var ErrRateLimited = errors.New("request blocked: rate limit critical")

// ErrorClass represents a classification of transport failures.
type ErrorClass string

const (
	// ClassClient represents 4xx client errors.
	ClassClient ErrorClass = "client"

	// ClassServer represents 5xx server errors.
	ClassServer ErrorClass = "server"

	// ClassRateLimit represents 429 responses and gate refusals.
	ClassRateLimit ErrorClass = "rate_limit"

	// ClassNetwork represents network/timeout errors.
	ClassNetwork ErrorClass = "network"
)

// Error is a transport failure for one locator.
type Error struct {
	Locator    string
	StatusCode int
	Class      ErrorClass
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s error (status %d)", e.Locator, e.Class, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s error: %v", e.Locator, e.Class, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to an error class.
// Returns "" for statuses that are not failures.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == 429:
		return ClassRateLimit
	case status >= 400 && status < 500:
		return ClassClient
	case status >= 500:
		return ClassServer
	default:
		return ""
	}
}
