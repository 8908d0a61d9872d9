package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeAuth       ErrorType = "auth_error"
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"

	// Infrastructure errors
	ErrorTypeStorage    ErrorType = "storage_error"
	ErrorTypeMessaging  ErrorType = "messaging_error"
	ErrorTypeProcessing ErrorType = "processing_error"

	// System errors
	ErrorTypeInternal      ErrorType = "internal_error"
	ErrorTypeConfiguration ErrorType = "configuration_error"
)

// AppError represents a custom application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new AppError
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve its context under the new type
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    errType,
			Message: message,
			Err:     appErr,
			Context: appErr.Context,
		}
	}

	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Is checks if the error is of a specific type
func Is(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Common error constructors

func NewAuthError(message string) *AppError {
	return New(ErrorTypeAuth, message)
}

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

func NewNotFoundError(resource string) *AppError {
	return New(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource))
}

func WrapNotFoundError(err error, resource string) *AppError {
	return Wrap(err, ErrorTypeNotFound, fmt.Sprintf("%s not found", resource))
}

func NewStorageError(message string) *AppError {
	return New(ErrorTypeStorage, message)
}

func WrapStorageError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeStorage, message)
}

func NewMessagingError(message string) *AppError {
	return New(ErrorTypeMessaging, message)
}

func WrapMessagingError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeMessaging, message)
}

func NewProcessingError(message string) *AppError {
	return New(ErrorTypeProcessing, message)
}

func WrapProcessingError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeProcessing, message)
}

func NewInternalError(message string) *AppError {
	return New(ErrorTypeInternal, message)
}

func WrapInternalError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeInternal, message)
}

func NewConfigurationError(message string) *AppError {
	return New(ErrorTypeConfiguration, message)
}

func WrapConfigurationError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeConfiguration, message)
}
