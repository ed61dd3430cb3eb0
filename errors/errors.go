package errors

import (
	stdErrors "errors"
	"fmt"
)

const (
	ErrNotFound     = "NOT FOUND"
	ErrInvalidInput = "INVALID INPUT"
	ErrAuth         = "UNAUTHORIZED"
	ErrAccessDenied = "ACCESS DENIED"
	ErrConflict     = "CONFLICT"
	ErrInternal     = "INTERNAL"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorResponse) Error() string {
	return fmt.Sprintf("code: %s, message: %s", e.Code, e.Message)
}

func New(code, format string, args ...any) ErrorResponse {
	return ErrorResponse{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first ErrorResponse in err's chain,
// ErrInternal for any other non-nil error and "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var resp ErrorResponse
	if stdErrors.As(err, &resp) {
		return resp.Code
	}
	return ErrInternal
}
