package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON error envelope: {"error":{...}}. The sync
// endpoint sends it with a 4xx/5xx status; once a stream has committed
// its headers, the same code and message travel inside a terminal error
// frame instead.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the client-visible slice of an AppError. HTTPStatus and
// Cause stay server-side.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse strips an AppError down to its client-visible fields.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// AsAppError unwraps err to an *AppError when one is in its chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}
