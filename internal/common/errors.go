package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by every component. Each request-path failure carries exactly one.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeUpstreamFetch = "UPSTREAM_FETCH"
	CodeDownload      = "DOWNLOAD"
	CodeParse         = "PDF_PARSE"
	CodeInference     = "INFERENCE"
	CodeReplyParse    = "REPLY_PARSE"
	CodeRemote        = "REMOTE"
	CodeRemoteWrite   = "REMOTE_WRITE"
	CodeNotFound      = "NOT_FOUND"
	CodeUpload        = "UPLOAD"
)

// AppError represents application-specific errors.
// Message is safe to return to callers; Cause keeps the underlying error for logs.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError builds an AppError.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status returned by the HTTP functions.
// Only caller mistakes are 4xx; every upstream failure is a server error.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
