package bank

import (
	"errors"
	"fmt"
)

var (
	ErrNavigationFailed = errors.New("navigation failed")
	ErrSessionExpired   = errors.New("session expired")

	ErrParsingFailed   = errors.New("failed to parse portal response")
	ErrRowNotFound     = errors.New("result row not found")
	ErrCellUnavailable = errors.New("cell unavailable")
	ErrTimeout         = errors.New("operation timed out")
)

// ScraperError provides detailed error context
type ScraperError struct {
	App       AppCode
	Operation string
	Cause     error
	Details   string
}

func (e *ScraperError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("[%s] %s failed: %v", e.App, e.Operation, e.Cause)
	}
	return fmt.Sprintf("[%s] %s failed: %v - %s", e.App, e.Operation, e.Cause, e.Details)
}

func (e *ScraperError) Unwrap() error {
	return e.Cause
}
