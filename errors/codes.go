package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeTimeout indicates the operation timed out, either waiting for
	// a conversion slot or inside the conversion itself.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidFormat indicates a field has an invalid format.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// Transcription pipeline errors
const (
	// ErrCodeConversionFailed indicates the audio conversion process exited
	// non-zero or could not be started.
	ErrCodeConversionFailed ErrorCode = "CONVERSION_FAILED"
	// ErrCodeUpstreamFailed indicates the transcription provider call failed
	// or raised mid-stream.
	ErrCodeUpstreamFailed ErrorCode = "UPSTREAM_FAILED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Conversion and upstream failures are deliberately not retryable: the relay
// never retries a transcription automatically.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
