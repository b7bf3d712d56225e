package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a vault error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrOutOfRange     ErrorCode = "OUT_OF_RANGE"    // 400
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrParseFailure   ErrorCode = "PARSE_FAILURE"   // 422
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrWriteFailure   ErrorCode = "WRITE_FAILURE"   // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// VaultError represents a structured error with code, status, and details.
type VaultError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *VaultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *VaultError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *VaultError {
	return &VaultError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewOutOfRange creates a 400 error for a position outside the vault.
func NewOutOfRange(index, length int) *VaultError {
	return &VaultError{
		Code:    ErrOutOfRange,
		Status:  400,
		Message: fmt.Sprintf("index %d out of range (vault has %d entries)", index, length),
		Details: map[string]any{"index": index, "length": length},
	}
}

// NewFileNotFound creates a 404 error for a missing file.
func NewFileNotFound(path string) *VaultError {
	return &VaultError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewParseFailure creates a 422 error when a file exists but cannot be parsed.
func NewParseFailure(path string, err error) *VaultError {
	msg := fmt.Sprintf("cannot parse %s", path)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &VaultError{
		Code:    ErrParseFailure,
		Status:  422,
		Message: msg,
		Details: map[string]any{"path": path},
		cause:   err,
	}
}

// NewCancelled creates a 499 error when an operation is cancelled.
func NewCancelled(op string) *VaultError {
	return &VaultError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewWriteFailure creates a 500 error when the vault file cannot be written.
func NewWriteFailure(path string, err error) *VaultError {
	msg := fmt.Sprintf("cannot write %s", path)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &VaultError{
		Code:    ErrWriteFailure,
		Status:  500,
		Message: msg,
		Details: map[string]any{"path": path},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *VaultError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &VaultError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		cause:   err,
	}
}

// Is checks if an error (or anything it wraps) is a VaultError with the given code.
func Is(err error, code ErrorCode) bool {
	var vErr *VaultError
	if stderrors.As(err, &vErr) {
		return vErr.Code == code
	}
	return false
}

// As returns the VaultError in err's chain, if any.
func As(err error) (*VaultError, bool) {
	var vErr *VaultError
	if stderrors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
