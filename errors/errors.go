package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type raised by the binding packages.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Constructors ---

// ArgumentNull reports a required parameter that was nil or empty.
func ArgumentNull(param string) *AppError {
	return &AppError{
		Code: ErrCodeArgumentNull, Message: fmt.Sprintf("value cannot be null (parameter %q)", param),
		Details: map[string]any{"param": param},
	}
}

// InvalidArgument reports a parameter whose value cannot be used.
func InvalidArgument(param, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s (parameter %q)", reason, param),
		Details: map[string]any{"param": param},
	}
}

// InvalidFormat reports a malformed hint or format string on a field.
func InvalidFormat(field, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidFormat, Message: fmt.Sprintf("invalid format for %s: %s", field, reason),
		Details: map[string]any{"field": field},
	}
}

// MissingField reports a required configuration field that is not set.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("missing required field: %s", field),
		Details: map[string]any{"field": field},
	}
}

// Validation creates an error for configuration that failed struct validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidArgument, Message: message}
}

// Client wraps a low-level failure into the client-level error.
func Client(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeClient, Message: message, Cause: cause}
}

// UnsupportedContent reports that no provider accepts the response content.
func UnsupportedContent(contentType, resultType string) *AppError {
	return &AppError{
		Code:    ErrCodeUnsupportedContent,
		Message: fmt.Sprintf("no deserializer accepts content type %q for %s", contentType, resultType),
		Details: map[string]any{"content_type": contentType, "result_type": resultType},
	}
}

// Disposed reports use of an object after it was closed.
func Disposed(object string) *AppError {
	return &AppError{
		Code: ErrCodeDisposed, Message: fmt.Sprintf("cannot access a closed %s", object),
		Details: map[string]any{"object": object},
	}
}

// Canceled wraps a context error observed at a suspension point.
func Canceled(cause error) *AppError {
	return &AppError{Code: ErrCodeCanceled, Message: "the operation was canceled", Cause: cause}
}

// CheckContext returns a Canceled error when ctx is done, nil otherwise.
func CheckContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return Canceled(err)
	}
	return nil
}

// --- Inspection helpers ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// Param returns the parameter named by a precondition or argument error.
func Param(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return ""
	}
	p, _ := appErr.Details["param"].(string)
	return p
}

// IsArgumentNull reports whether err is a precondition violation.
func IsArgumentNull(err error) bool { return HasCode(err, ErrCodeArgumentNull) }

// IsInvalidArgument reports whether err is an invalid-argument error.
func IsInvalidArgument(err error) bool { return HasCode(err, ErrCodeInvalidArgument) }

// IsClient reports whether err is the client-level wrapper.
func IsClient(err error) bool { return HasCode(err, ErrCodeClient) }

// IsUnsupportedContent reports whether err is, or wraps, an unsupported-content error.
func IsUnsupportedContent(err error) bool { return HasCode(err, ErrCodeUnsupportedContent) }

// IsDisposed reports whether err is a use-after-close error.
func IsDisposed(err error) bool { return HasCode(err, ErrCodeDisposed) }

// IsCanceled reports whether err is a cancellation.
func IsCanceled(err error) bool { return HasCode(err, ErrCodeCanceled) }
