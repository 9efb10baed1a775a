package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorType int

const (
	ErrFormat ErrorType = iota
	ErrConfig
	ErrFileRead
	ErrFileWrite
	ErrAPI
	ErrChunk
	ErrIncompleteBatch
	ErrState
	ErrUnknown
)

// PipelineError carries the error class the CLI maps to exit behavior,
// plus free-form context for diagnostics.
type PipelineError struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *PipelineError {
	return &PipelineError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewErrorWithCause(errorType ErrorType, message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   cause,
	}
}

func (e *PipelineError) Error() string {
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

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func (e *PipelineError) WithContext(key string, value any) *PipelineError {
	e.Context[key] = value
	return e
}

func (t ErrorType) String() string {
	switch t {
	case ErrFormat:
		return "Format"
	case ErrConfig:
		return "Config"
	case ErrFileRead:
		return "FileRead"
	case ErrFileWrite:
		return "FileWrite"
	case ErrAPI:
		return "API"
	case ErrChunk:
		return "Chunk"
	case ErrIncompleteBatch:
		return "IncompleteBatch"
	case ErrState:
		return "State"
	default:
		return "Unknown"
	}
}

// IsErrorType reports whether err carries the given pipeline error class.
func IsErrorType(err error, errorType ErrorType) bool {
	var pipeErr *PipelineError
	if errors.As(err, &pipeErr) {
		return pipeErr.Type == errorType
	}
	return false
}

func WrapError(err error, errorType ErrorType, message string) *PipelineError {
	return NewErrorWithCause(errorType, message, err)
}

// Advice returns a remediation hint for the error class, surfaced by the CLI
// alongside the error itself.
func Advice(err error) string {
	var pipeErr *PipelineError
	if !errors.As(err, &pipeErr) {
		return ""
	}
	switch pipeErr.Type {
	case ErrFormat:
		return "The subtitle file is malformed; check it is a valid SRT file"
	case ErrConfig:
		return "Check configuration environment variables (CHUNK_SIZE, LLM_API_KEY, ...)"
	case ErrFileRead:
		return "Check that the project directory and its files exist with read permissions"
	case ErrFileWrite:
		return "Check that the project directory has write permissions"
	case ErrAPI:
		return "Check the API key, network connectivity and the provider's status"
	case ErrIncompleteBatch:
		return "Re-run the translate stage to finish the remaining chunks, then assemble again"
	case ErrState:
		return "The batch state disagrees with the current chunking; remove batch.db to start over"
	default:
		return ""
	}
}
