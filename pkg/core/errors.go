package core

import "fmt"

// ErrorCategory classifies mapping errors by how the engine reacts to them.
type ErrorCategory int

// ErrorCategory values.
const (
	ErrCategoryNone ErrorCategory = iota
	// ErrCategoryConnection errors are fatal: the whole session aborts.
	ErrCategoryConnection
	// ErrCategoryResolution errors are recovered per control (null entry).
	ErrCategoryResolution
	// ErrCategoryVerification errors mean an expected UI change never
	// showed up; recovered like resolution failures.
	ErrCategoryVerification
	// ErrCategoryConfig errors are fatal at startup.
	ErrCategoryConfig
)

// String returns the category name.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryResolution:
		return "resolution"
	case ErrCategoryVerification:
		return "verification"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Fatal reports whether errors of this category abort the whole session.
func (c ErrorCategory) Fatal() bool {
	return c == ErrCategoryConnection || c == ErrCategoryConfig
}

// MappingError is a structured error with category and machine-readable code.
type MappingError struct {
	Category ErrorCategory
	Code     string // device_unreachable, resolution_failed, ...
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *MappingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *MappingError) Unwrap() error {
	return e.Cause
}

// Is matches against the predefined sentinel with the same code, so
// errors.Is(err, ErrDeviceUnreachable) works on wrapped copies.
func (e *MappingError) Is(target error) bool {
	t, ok := target.(*MappingError)
	return ok && t.Code == e.Code
}

// WithCause returns a copy of the error with the given cause attached.
func (e *MappingError) WithCause(cause error) *MappingError {
	return &MappingError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *MappingError) WithMessage(msg string) *MappingError {
	return &MappingError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Cause:    e.Cause,
	}
}

// Predefined errors.
var (
	ErrDeviceUnreachable = &MappingError{
		Category: ErrCategoryConnection,
		Code:     "device_unreachable",
		Message:  "device bridge command failed",
	}
	ErrResolutionFailed = &MappingError{
		Category: ErrCategoryResolution,
		Code:     "resolution_failed",
		Message:  "control could not be resolved",
	}
	ErrVerificationTimeout = &MappingError{
		Category: ErrCategoryVerification,
		Code:     "verification_timeout",
		Message:  "expected UI change did not occur",
	}
	ErrAmbiguousMatch = &MappingError{
		Category: ErrCategoryResolution,
		Code:     "ambiguous_match",
		Message:  "multiple equally plausible text matches",
	}
	ErrAnchorAbsent = &MappingError{
		Category: ErrCategoryResolution,
		Code:     "anchor_absent",
		Message:  "sibling anchor control is absent",
	}
	ErrInvalidCalibration = &MappingError{
		Category: ErrCategoryConfig,
		Code:     "invalid_calibration",
		Message:  "invalid calibration data",
	}
)

// NewMappingError creates a MappingError with the given parameters.
func NewMappingError(category ErrorCategory, code, message string) *MappingError {
	return &MappingError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
