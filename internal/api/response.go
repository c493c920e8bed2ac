// Package api implements the REST surface of §6: triggering generation
// runs and exposing assignments and version lifecycle operations. The core
// generator/version packages do the work; this package only translates
// HTTP requests into calls against them and results back into JSON,
// following the teacher's envelope-response style
// (internal/api/response.go: APIResponse/ErrorResponse/ResponseMeta).
package api

import (
	"time"

	"github.com/retailshift/scheduler/internal/validation"
)

// Response is the standard envelope for every endpoint.
type Response struct {
	Data       interface{}        `json:"data,omitempty"`
	Validation *validation.Result `json:"validation,omitempty"`
	Error      *ErrorBody         `json:"error,omitempty"`
	Meta       Meta               `json:"meta"`
}

// ErrorBody carries a machine-readable code plus a human message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries response-level bookkeeping.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Success wraps data in the standard envelope.
func Success(data interface{}) *Response {
	return &Response{Data: data, Meta: Meta{Timestamp: time.Now().UTC()}}
}

// SuccessWithWarnings wraps data plus a non-fatal validation.Result.
func SuccessWithWarnings(data interface{}, warnings *validation.Result) *Response {
	return &Response{Data: data, Validation: warnings, Meta: Meta{Timestamp: time.Now().UTC()}}
}

// Err builds an error envelope for a known code/message pair.
func Err(code, message string) *Response {
	return &Response{Error: &ErrorBody{Code: code, Message: message}, Meta: Meta{Timestamp: time.Now().UTC()}}
}
