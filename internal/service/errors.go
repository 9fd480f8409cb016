package service

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorType int

const (
	ErrFileNotFound ErrorType = iota
	ErrFileRead
	ErrFileWrite
	ErrParse
	ErrProvider
	ErrUnmappedPath
	ErrValidation
	ErrConfig
	ErrInvalidState
	ErrUnknown
)

// PiratarrError is the central error type. The Type drives HTTP status
// mapping; Context carries structured detail for logs and API responses.
type PiratarrError struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *PiratarrError {
	return &PiratarrError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewErrorWithCause(errorType ErrorType, message string, cause error) *PiratarrError {
	return &PiratarrError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   cause,
	}
}

func (e *PiratarrError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type.String(), e.Message))

	if len(e.Context) > 0 {
		var ctxParts []string
		for k, v := range e.Context {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *PiratarrError) Unwrap() error {
	return e.Cause
}

func (e *PiratarrError) WithContext(key string, value any) *PiratarrError {
	e.Context[key] = value
	return e
}

func (t ErrorType) String() string {
	switch t {
	case ErrFileNotFound:
		return "FileNotFound"
	case ErrFileRead:
		return "FileRead"
	case ErrFileWrite:
		return "FileWrite"
	case ErrParse:
		return "Parse"
	case ErrProvider:
		return "Provider"
	case ErrUnmappedPath:
		return "UnmappedPath"
	case ErrValidation:
		return "Validation"
	case ErrConfig:
		return "Config"
	case ErrInvalidState:
		return "InvalidState"
	default:
		return "Unknown"
	}
}

func IsErrorType(err error, errorType ErrorType) bool {
	var perr *PiratarrError
	if errors.As(err, &perr) {
		return perr.Type == errorType
	}
	return false
}

func WrapError(err error, errorType ErrorType, message string) *PiratarrError {
	return NewErrorWithCause(errorType, message, err)
}
