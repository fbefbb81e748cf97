// Package errors defines AppError, the coded error the HTTP layer renders as JSON.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries a stable machine-readable code and the HTTP status to answer with.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`

	// Params are the values clients interpolate into a localized message.
	Params map[string]interface{} `json:"params,omitempty"`

	// Err is the cause. It is logged, never sent.
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// WithParams attaches client-facing parameters.
func (e *AppError) WithParams(params map[string]interface{}) *AppError {
	if len(params) > 0 {
		e.Params = params
	}
	return e
}

// WithCause records the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func NotFound(code, message string) *AppError   { return New(code, message, http.StatusNotFound) }
func BadRequest(code, message string) *AppError { return New(code, message, http.StatusBadRequest) }
func Conflict(code, message string) *AppError   { return New(code, message, http.StatusConflict) }

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
