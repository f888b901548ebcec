package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound       Kind = "NOT_FOUND"
	KindValidation     Kind = "VALIDATION"
	KindConflict       Kind = "CONFLICT"
	KindUploadRejected Kind = "UPLOAD_REJECTED"
	KindIO             Kind = "IO"
)

// Error is the single error type crossing the service/controller boundary.
// Status is the HTTP status the error handler answers with.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

func UploadRejected(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUploadRejected, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// UploadTooLarge is an UploadRejected answered with 413.
func UploadTooLarge(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUploadRejected, Status: http.StatusRequestEntityTooLarge, Message: fmt.Sprintf(format, args...)}
}

// IO wraps a storage failure. The message is logged, never sent to clients.
func IO(op string, err error) *Error {
	return &Error{Kind: KindIO, Status: http.StatusInternalServerError, Message: op, Err: err}
}

func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
