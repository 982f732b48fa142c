package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Run termination. Not a failure: the run had no included tasks.
	ErrNothingToDo ErrorCode = "NOTHING_TO_DO"

	// Job lifecycle errors
	ErrConditionFailed ErrorCode = "CONDITION_FAILED"
	ErrDeclareFailed   ErrorCode = "DECLARE_FAILED"
	ErrActionFailed    ErrorCode = "ACTION_FAILED"
	ErrRollbackFailed  ErrorCode = "ROLLBACK_FAILED"

	// Stash errors
	ErrUnsupportedStashKind ErrorCode = "UNSUPPORTED_STASH_KIND"
	ErrStashFailed          ErrorCode = "STASH_FAILED"
	ErrRestoreFailed        ErrorCode = "RESTORE_FAILED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Environment errors
	ErrCommandFailed  ErrorCode = "COMMAND_FAILED"
	ErrNotInProject   ErrorCode = "NOT_IN_PROJECT"
	ErrJobfileInvalid ErrorCode = "JOBFILE_INVALID"
	ErrFileAccess     ErrorCode = "FILE_ACCESS"
	ErrFileWrite      ErrorCode = "FILE_WRITE"
)

// JobtxError represents a structured error with code and details
type JobtxError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *JobtxError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *JobtxError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *JobtxError) Is(target error) bool {
	var targetErr *JobtxError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new JobtxError with the given code and message
func New(code ErrorCode, message string) *JobtxError {
	return &JobtxError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new JobtxError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *JobtxError {
	return &JobtxError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a JobtxError
func Wrap(err error, code ErrorCode, message string) *JobtxError {
	if err == nil {
		return nil
	}
	return &JobtxError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *JobtxError {
	if err == nil {
		return nil
	}
	return &JobtxError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *JobtxError) WithDetail(key string, value interface{}) *JobtxError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *JobtxError) WithDetails(details map[string]interface{}) *JobtxError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var jobtxErr *JobtxError
	if errors.As(err, &jobtxErr) {
		return jobtxErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a JobtxError
func GetErrorCode(err error) ErrorCode {
	var jobtxErr *JobtxError
	if errors.As(err, &jobtxErr) {
		return jobtxErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a JobtxError
func GetErrorDetails(err error) map[string]interface{} {
	var jobtxErr *JobtxError
	if errors.As(err, &jobtxErr) {
		return jobtxErr.Details
	}
	return nil
}

// NothingToDo returns the termination signal used when a run has no
// included tasks.
func NothingToDo() *JobtxError {
	return New(ErrNothingToDo, "Nothing to do.")
}

// IsCleanExit reports whether err is a termination signal that should be
// treated as success by callers. The whole chain is searched, so the signal
// still counts when another coded error wraps it.
func IsCleanExit(err error) bool {
	return err != nil && errors.Is(err, &JobtxError{Code: ErrNothingToDo})
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	if err == nil || IsCleanExit(err) {
		return 0
	}
	return 1
}
