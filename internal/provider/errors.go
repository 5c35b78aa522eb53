package provider

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for common provider failures.
var (
	ErrContextLengthExceeded = errors.New("context length exceeded")
	ErrContentBlocked        = errors.New("content blocked by safety filters")
	ErrRateLimit             = errors.New("rate limit exceeded")
	ErrAuthentication        = errors.New("authentication failed")
	ErrNetwork               = errors.New("network error")
	ErrEmptyResponse         = errors.New("empty response")
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeContextLength  ErrorCode = "context_length_exceeded"
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeTimeout        ErrorCode = "timeout"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeEmptyResponse  ErrorCode = "empty_response"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
	ErrorCodeUnknown        ErrorCode = "unknown"
)

// ProviderError wraps errors with additional context.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retryable  bool
	RetryAfter *time.Duration
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// Is matches the sentinel that corresponds to the error code.
func (e *ProviderError) Is(target error) bool {
	switch e.Code {
	case ErrorCodeContextLength:
		return target == ErrContextLengthExceeded
	case ErrorCodeContentBlocked:
		return target == ErrContentBlocked
	case ErrorCodeRateLimit:
		return target == ErrRateLimit
	case ErrorCodeAuth:
		return target == ErrAuthentication
	case ErrorCodeNetwork:
		return target == ErrNetwork
	case ErrorCodeEmptyResponse:
		return target == ErrEmptyResponse
	}
	return false
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}

// GetRetryAfter returns the retry-after duration if present.
func GetRetryAfter(err error) *time.Duration {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.RetryAfter
	}
	return nil
}

// Classify maps an opaque SDK error onto a ProviderError by inspecting its
// message. SDKs in use do not expose stable typed errors for every case.
func Classify(err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "api key"):
		return &ProviderError{Code: ErrorCodeAuth, Message: "authentication failed", Underlying: err}
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource_exhausted"):
		return &ProviderError{Code: ErrorCodeRateLimit, Message: "rate limited", Underlying: err, Retryable: true}
	case strings.Contains(msg, "context length") || strings.Contains(msg, "too many tokens"):
		return &ProviderError{Code: ErrorCodeContextLength, Message: "context window exceeded", Underlying: err}
	case strings.Contains(msg, "safety") || strings.Contains(msg, "content filter"):
		return &ProviderError{Code: ErrorCodeContentBlocked, Message: "blocked by safety filters", Underlying: err}
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return &ProviderError{Code: ErrorCodeTimeout, Message: "request timed out", Underlying: err, Retryable: true}
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") || strings.Contains(msg, "503") || strings.Contains(msg, "unavailable"):
		return &ProviderError{Code: ErrorCodeUnavailable, Message: "service unavailable", Underlying: err, Retryable: true}
	case strings.Contains(msg, "connection") || strings.Contains(msg, "eof"):
		return &ProviderError{Code: ErrorCodeNetwork, Message: "network failure", Underlying: err, Retryable: true}
	default:
		return &ProviderError{Code: ErrorCodeUnknown, Message: "provider call failed", Underlying: err}
	}
}

// TruncateAtStop cuts text at the first stop token and re-appends the token,
// so a response always ends with exactly one end marker when it had one.
func TruncateAtStop(text, stop string) string {
	if stop == "" {
		return text
	}
	head, _, _ := strings.Cut(text, stop)
	return strings.TrimSpace(head) + "\n" + stop
}
