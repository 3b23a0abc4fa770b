package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrValidation   = errors.New("validation failed")

	// ErrModelUnavailable marks a NER or gazetteer backend that failed to load or run.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrMalformedLLMResponse marks an LLM completion that is not the expected JSON.
	ErrMalformedLLMResponse = errors.New("malformed llm response")
	// ErrInvalidInputType marks an upload that is not an image.
	ErrInvalidInputType = errors.New("invalid input type")
)

// Error codes carried by AppError.
const (
	CodeConfig             = "CONFIG_ERROR"
	CodeModelUnavailable   = "MODEL_UNAVAILABLE"
	CodeMalformedLLM       = "MALFORMED_LLM_RESPONSE"
	CodeInvalidInputType   = "INVALID_INPUT_TYPE"
	CodeLLMRequestFailed   = "LLM_REQUEST_FAILED"
	CodeOCRFailed          = "OCR_FAILED"
	CodeUnsupportedBackend = "UNSUPPORTED_BACKEND"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ModelUnavailable wraps err as an ErrModelUnavailable failure for the named backend.
func ModelUnavailable(backend string, err error) error {
	if err == nil {
		return NewAppError(CodeModelUnavailable, backend, ErrModelUnavailable)
	}
	return NewAppError(CodeModelUnavailable, backend, fmt.Errorf("%w: %v", ErrModelUnavailable, err))
}

// MalformedLLMResponse wraps err as an ErrMalformedLLMResponse failure.
func MalformedLLMResponse(message string, err error) error {
	if err == nil {
		return NewAppError(CodeMalformedLLM, message, ErrMalformedLLMResponse)
	}
	return NewAppError(CodeMalformedLLM, message, fmt.Errorf("%w: %v", ErrMalformedLLMResponse, err))
}

// ErrorCode returns the AppError code found in err's chain, or "".
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
