package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/edify-labs/edify/internal/llm"
)

// Error codes surfaced to API clients and recorded with each generation.
const (
	CodeInvalidMessage      = "INVALID_MESSAGE"
	CodeInvalidResponse     = "INVALID_RESPONSE"
	CodeEmptyResponse       = "EMPTY_RESPONSE"
	CodeInvalidJSON         = "INVALID_JSON"
	CodeValidation          = "VALIDATION_ERROR"
	CodeParse               = "PARSE_ERROR"
	CodeRateLimited         = "RATE_LIMITED"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeMaxTokens           = "MAX_TOKENS"
	CodeTimeout             = "TIMEOUT"
	CodeCanceled            = "CANCELED"
	CodeInternal            = "INTERNAL"
)

// StatusClientClosedRequest reports a generation abandoned by the caller.
const StatusClientClosedRequest = 499

// Error is a failed AI call with the HTTP status it should be reported as.
type Error struct {
	Status  int
	Code    string
	Message string

	// Violations lists schema failures for CodeValidation.
	Violations []llm.Violation

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(status int, code, msg string, err error) *Error {
	return &Error{Status: status, Code: code, Message: msg, Err: err}
}

// AsError returns err as an *Error, classifying anything else as INTERNAL.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return providerError(err)
}

// providerError maps llm and context failures onto API error codes.
func providerError(err error) *Error {
	var (
		rateErr *llm.ErrRateLimit
		downErr *llm.ErrProviderUnavailable
		maxErr  *llm.ErrMaxTokensExceeded
		respErr *llm.ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled):
		return newError(StatusClientClosedRequest, CodeCanceled, "The request was canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(http.StatusGatewayTimeout, CodeTimeout, "The AI service took too long to respond", err)
	case errors.As(err, &rateErr):
		return newError(http.StatusTooManyRequests, CodeRateLimited, "The AI service is rate limiting requests, try again shortly", err)
	case errors.As(err, &maxErr):
		return newError(http.StatusBadGateway, CodeMaxTokens, "The AI response was cut off before it finished", err)
	case errors.As(err, &downErr):
		return newError(http.StatusBadGateway, CodeProviderUnavailable, "The AI service is unavailable", err)
	case errors.As(err, &respErr):
		return newError(http.StatusInternalServerError, CodeInvalidResponse, "Invalid response received from the AI service", err)
	default:
		return newError(http.StatusInternalServerError, CodeInternal, "Failed to generate a response", err)
	}
}
