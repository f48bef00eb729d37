package apperrors

import "errors"

// Common errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
)

// Course errors
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseAlreadyExists = errors.New("course with this title already exists")
)

// User errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserNotTeacher = errors.New("user is not a teacher")
	ErrUserNotStudent = errors.New("user is not a student")
)

// BusinessError is an expected rule failure raised by a service during a
// write. Message is shown to the user as is; Err keeps the sentinel for
// errors.Is checks.
type BusinessError struct {
	Err     error
	Message string
	Code    string
}

// Error implements error interface
func (e *BusinessError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError wraps a sentinel with a user-facing message.
func NewBusinessError(err error, message string) *BusinessError {
	return &BusinessError{
		Err:     err,
		Message: message,
	}
}

// WithCode adds an error code
func (e *BusinessError) WithCode(code string) *BusinessError {
	e.Code = code
	return e
}

// AsBusinessError reports whether err carries a BusinessError.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
