package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Precondition and configuration errors (caller fixes the call)
const (
	// ErrCodeArgumentNull indicates a required parameter was nil or empty.
	ErrCodeArgumentNull ErrorCode = "ARGUMENT_NULL"
	// ErrCodeInvalidArgument indicates a parameter value is not acceptable,
	// for example an ambiguous credential configuration.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidFormat indicates a malformed hint or format string.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	// ErrCodeMissingField indicates a required configuration field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Content errors
const (
	// ErrCodeUnsupportedContent indicates no provider could handle a response,
	// or an unknown charset / content-encoding token was requested.
	ErrCodeUnsupportedContent ErrorCode = "UNSUPPORTED_CONTENT"
	// ErrCodeClient is the client-level wrapper carrying a low-level cause.
	ErrCodeClient ErrorCode = "CLIENT_ERROR"
)

// Lifecycle errors
const (
	// ErrCodeDisposed indicates use of a resource after it was closed.
	ErrCodeDisposed ErrorCode = "OBJECT_DISPOSED"
	// ErrCodeCanceled indicates the operation observed a canceled context.
	ErrCodeCanceled ErrorCode = "OPERATION_CANCELED"
)
