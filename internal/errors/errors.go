package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrorCategory defines the type of error for proper handling
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryInternal      ErrorCategory = "internal"
	CategoryClassifier    ErrorCategory = "classifier"
	CategoryResource      ErrorCategory = "resource"
	CategoryConfiguration ErrorCategory = "configuration"
)

// AppError wraps an errbuilder error with a category and capture time
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	Timestamp  time.Time     `json:"timestamp"`
	StackTrace string        `json:"stack_trace,omitempty"`
}

// Error renders the error as "[CODE] message"
func (e *AppError) Error() string {
	codeStr := "UNKNOWN_ERROR"
	switch e.ErrBuilder.ErrCode() {
	case errbuilder.CodeInvalidArgument:
		codeStr = "VALIDATION_ERROR"
	case errbuilder.CodeUnavailable:
		codeStr = "UNAVAILABLE"
	case errbuilder.CodeDeadlineExceeded:
		codeStr = "TIMEOUT_ERROR"
	case errbuilder.CodeResourceExhausted:
		codeStr = "RATE_LIMIT_EXCEEDED"
	case errbuilder.CodeInternal:
		codeStr = "INTERNAL_ERROR"
	case errbuilder.CodeFailedPrecondition:
		codeStr = "PRECONDITION_FAILED"
	}

	msg := fmt.Sprintf("[%s] %s", codeStr, e.ErrBuilder.Msg)
	if cause := e.ErrBuilder.Unwrap(); cause != nil {
		msg += ": " + cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// NewAppError creates an AppError from errbuilder with additional context
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		Timestamp:  time.Now(),
	}
}

func withDetail(builder *errbuilder.ErrBuilder, key, value string) *errbuilder.ErrBuilder {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set(key, errors.New(value))
	return builder.WithDetails(errbuilder.NewErrDetails(errorMap))
}

// NewValidationError creates a validation error using errbuilder
func NewValidationError(message string, details ...interface{}) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)

	if len(details) > 0 {
		builder = withDetail(builder, "validation_details", fmt.Sprintf("%v", details[0]))
	}

	return NewAppError(builder, CategoryValidation)
}

// NewTimeoutError creates a timeout error using errbuilder
func NewTimeoutError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDeadlineExceeded).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryTimeout)
}

// ClassifierFailure describes how an external classifier call went wrong
type ClassifierFailure int

const (
	// FailureUnavailable means the model could not be reached or refused the call
	FailureUnavailable ClassifierFailure = iota
	// FailureTimeout means the call outlived its deadline
	FailureTimeout
	// FailureMalformed means the model answered with output we cannot use
	FailureMalformed
)

// NewClassifierError reports a failed external classifier invocation
func NewClassifierError(kind ClassifierFailure, message string, cause error) *AppError {
	builder := errbuilder.New().WithMsg(message)
	switch kind {
	case FailureTimeout:
		builder = builder.WithCode(errbuilder.CodeDeadlineExceeded)
	case FailureMalformed:
		builder = builder.WithCode(errbuilder.CodeInvalidArgument)
	default:
		builder = builder.WithCode(errbuilder.CodeUnavailable)
	}
	builder = withDetail(builder, "stage", "classifier")

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryClassifier)
}

// NewResourceLoadError reports a missing or unparseable static resource.
// It is fatal: nothing may be analyzed without the lexicons.
func NewResourceLoadError(resource string, cause error) *AppError {
	builder := withDetail(errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("failed to load resource %s", resource)), "resource", resource)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryResource)
}

// NewInternalError creates an internal error using errbuilder
func NewInternalError(message string, cause error) *AppError {
	builder := withDetail(errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("Internal error"), "internal_details", message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	appErr := NewAppError(builder, CategoryInternal)
	appErr.StackTrace = captureStackTrace()
	return appErr
}

// NewConfigurationError creates a configuration error using errbuilder
func NewConfigurationError(message string, cause error) *AppError {
	builder := withDetail(errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("Configuration error"), "config_details", message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryConfiguration)
}

// captureStackTrace captures a stack trace for debugging
func captureStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// ToAppError converts any error to an AppError
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if ebErr, ok := err.(*errbuilder.ErrBuilder); ok {
		return NewAppError(ebErr, CategoryInternal)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("deadline exceeded", err)
	}

	if errors.Is(err, context.Canceled) {
		return NewTimeoutError("request cancelled", err)
	}

	if strings.Contains(err.Error(), "timeout") {
		return NewTimeoutError("timeout", err)
	}

	return NewInternalError("An unexpected error occurred", err)
}

// IsCategory reports whether err is an AppError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Category == category
}

// IsClassifierError reports whether err came from the classifier boundary
func IsClassifierError(err error) bool {
	return IsCategory(err, CategoryClassifier)
}

// IsResourceError reports whether err is a fatal resource load failure
func IsResourceError(err error) bool {
	return IsCategory(err, CategoryResource)
}

// IsTransientError reports whether a failure is likely to clear on its own:
// timeouts and an unavailable upstream. Nothing retries on it; the health
// tracker counts these failures separately from permanent ones.
func IsTransientError(err error) bool {
	appErr := ToAppError(err)
	if appErr == nil {
		return false
	}

	switch appErr.Category {
	case CategoryTimeout:
		return true
	case CategoryClassifier:
		code := appErr.ErrBuilder.ErrCode()
		return code == errbuilder.CodeUnavailable ||
			code == errbuilder.CodeDeadlineExceeded ||
			code == errbuilder.CodeResourceExhausted
	default:
		return false
	}
}

// LogError logs an error with a level chosen by its category
func LogError(logger *slog.Logger, err *AppError, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}

	entry := logger.With(
		"error_category", err.Category,
		"error_code", err.ErrBuilder.ErrCode(),
	).With(attrs...)

	msg := err.ErrBuilder.Msg
	cause := err.ErrBuilder.Unwrap()

	switch err.Category {
	case CategoryValidation:
		entry.Warn(msg, "details", err.ErrBuilder.Details.Errors)
	case CategoryClassifier, CategoryTimeout:
		if cause != nil {
			entry.Warn(msg, "cause", cause)
		} else {
			entry.Warn(msg)
		}
	default:
		if cause != nil {
			entry.Error(msg, "cause", cause)
		} else {
			entry.Error(msg)
		}
	}

	if err.StackTrace != "" {
		entry.Debug("stack_trace", "trace", err.StackTrace)
	}
}

// WrapError wraps an error with additional context
func WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	contextMsg := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", contextMsg, err)
}

// SafeClose safely closes a resource and logs any errors
func SafeClose(closer interface{ Close() error }, resourceName string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		slog.Warn("Failed to close resource",
			"resource", resourceName,
			"error", err)
	}
}
