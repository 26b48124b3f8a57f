package domain

import (
	"errors"
	"fmt"
)

// Category sentinels.
var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrTimeout      = fmt.Errorf("operation timed out")
	ErrRateLimit    = fmt.Errorf("rate limit exceeded")
)

// Sentinel errors for the domain layer.
var (
	ErrBrowserUnavailable = fmt.Errorf("active browser tab unavailable")
	ErrNoDomain           = fmt.Errorf("no domain detected: %w", ErrBrowserUnavailable)
	ErrEmptyQuery         = fmt.Errorf("search term is empty")
	ErrMalformedURL       = fmt.Errorf("malformed url")
	ErrPersistence        = fmt.Errorf("history persistence failed")
	ErrOpenFailed         = fmt.Errorf("failed to open url")
	ErrConfigLoad         = fmt.Errorf("failed to load configuration")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Search.Submit")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category, reported by the CLI and MCP tools.
type ErrorCode string

const (
	CodeUnknown            ErrorCode = "UNKNOWN"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeInvalidInput       ErrorCode = "INVALID_INPUT"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeRateLimit          ErrorCode = "RATE_LIMIT"
	CodeBrowserUnavailable ErrorCode = "BROWSER_UNAVAILABLE"
	CodeNoDomain           ErrorCode = "NO_DOMAIN"
	CodeEmptyQuery         ErrorCode = "EMPTY_QUERY"
	CodeMalformedURL       ErrorCode = "MALFORMED_URL"
	CodePersistence        ErrorCode = "PERSISTENCE"
	CodeOpenFailed         ErrorCode = "OPEN_FAILED"
	CodeConfigLoad         ErrorCode = "CONFIG_LOAD"
)

// errorCodes is ordered most specific first: ErrNoDomain wraps
// ErrBrowserUnavailable and must win the errors.Is walk.
var errorCodes = []struct {
	err  error
	code ErrorCode
}{
	{ErrNoDomain, CodeNoDomain},
	{ErrBrowserUnavailable, CodeBrowserUnavailable},
	{ErrEmptyQuery, CodeEmptyQuery},
	{ErrMalformedURL, CodeMalformedURL},
	{ErrPersistence, CodePersistence},
	{ErrOpenFailed, CodeOpenFailed},
	{ErrConfigLoad, CodeConfigLoad},
	{ErrNotFound, CodeNotFound},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrTimeout, CodeTimeout},
	{ErrRateLimit, CodeRateLimit},
}

// ErrorCodeOf extracts the ErrorCode from any error in the chain.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	return ErrorCodeOf(e.Err)
}
