package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a stable machine-readable error kind surfaced to callers.
type ErrorCode string

const (
	CodeConfigNotFound       ErrorCode = "config-not-found"
	CodeConfigParse          ErrorCode = "config-parse-error"
	CodeServerNotFound       ErrorCode = "server-not-found"
	CodeServerExists         ErrorCode = "server-already-exists"
	CodeConnectionFailed     ErrorCode = "server-connection-failed"
	CodeServerTimeout        ErrorCode = "server-timeout"
	CodeServerDisabled       ErrorCode = "server-disabled"
	CodeToolNotFound         ErrorCode = "tool-not-found"
	CodeToolExecutionFailed  ErrorCode = "tool-execution-failed"
	CodeToolInvalidArgs      ErrorCode = "tool-invalid-args"
	CodeResourceNotFound     ErrorCode = "resource-not-found"
	CodePromptNotFound       ErrorCode = "prompt-not-found"
	CodeTransportUnsupported ErrorCode = "transport-not-supported"
	CodeValidation           ErrorCode = "validation-error"
	CodeInvalidJSON          ErrorCode = "invalid-json"
	CodePermissionDenied     ErrorCode = "permission-denied"
	CodeUnknown              ErrorCode = "unknown-error"
)

// Error is the single structured error type every internally raised
// condition normalizes into before it reaches a caller.
type Error struct {
	Code       ErrorCode
	Message    string
	Details    map[string]any
	Suggestion string
	Similar    []string
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// WithDetail attaches a structured detail to the error and returns it.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets the actionable suggestion text and returns the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithSimilar sets the "did you mean" candidate list and returns the error.
func (e *Error) WithSimilar(names []string) *Error {
	e.Similar = names
	return e
}

// E builds an Error with a code and message.
func E(code ErrorCode, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Message: msg,
		Cause:   cause,
	}
}

// Ef builds an Error with a formatted message and no cause.
func Ef(code ErrorCode, format string, args ...any) *Error {
	return E(code, fmt.Sprintf(format, args...), nil)
}

// Wrap normalizes any foreign error into an *Error, preserving the original
// as the cause. An existing *Error passes through unchanged.
func Wrap(code ErrorCode, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	return E(code, "", err)
}

// CodeFrom extracts the stable code from an error chain, mapping known
// sentinels; anything else is unknown-error.
func CodeFrom(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) && typed.Code != "" {
		return typed.Code
	}
	switch {
	case errors.Is(err, ErrNotConnected):
		return CodeConnectionFailed
	case errors.Is(err, ErrInvalidArguments):
		return CodeToolInvalidArgs
	default:
		return CodeUnknown
	}
}

// ErrorPayload is the JSON shape of an Error inside a response envelope.
type ErrorPayload struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
	Similar    []string       `json:"didYouMean,omitempty"`
}

// Payload converts an arbitrary error into its envelope representation.
func Payload(err error) *ErrorPayload {
	if err == nil {
		return nil
	}
	typed := Wrap(CodeUnknown, err)
	msg := typed.Message
	if msg == "" && typed.Cause != nil {
		msg = typed.Cause.Error()
	}
	code := typed.Code
	if code == "" {
		code = CodeUnknown
	}
	return &ErrorPayload{
		Code:       code,
		Message:    msg,
		Details:    typed.Details,
		Suggestion: typed.Suggestion,
		Similar:    typed.Similar,
	}
}

// SimilarNames returns candidates from known whose names mutually contain
// the requested name, case-insensitively. Substring containment, not edit
// distance; "fetch" matches "web_fetcher" but "fech" matches nothing.
func SimilarNames(requested string, known []string) []string {
	needle := strings.ToLower(strings.TrimSpace(requested))
	if needle == "" {
		return nil
	}
	var out []string
	for _, name := range known {
		candidate := strings.ToLower(name)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			out = append(out, name)
		}
	}
	return out
}

var ErrNotConnected = errors.New("not connected")
var ErrInvalidArguments = errors.New("invalid arguments")
