package evidex

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found"
	EINTERNAL    = "internal"
	EUNAVAILABLE = "unavailable"

	// Extraction failures.
	EUNSUPPORTED = "unsupported_type"
	ECORRUPT     = "corrupt_file"
	EOCR         = "ocr_failure"
	ETIMEOUT     = "timeout"

	// Entity extraction failures.
	EMODEL = "model_unavailable"

	// Index failures.
	ESTORAGE  = "storage_write_failure"
	ECONFLICT = "transaction_conflict"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string

	// Fatal marks storage-level failures that must abort a whole batch.
	Fatal bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("evidex error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Fatalf is like Errorf but marks the error as fatal for the batch.
func Fatalf(code string, format string, args ...any) *Error {
	e := Errorf(code, format, args...)
	e.Fatal = true
	return e
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// IsFatal reports whether err is a storage-level failure that invalidates
// any further writes in the current batch.
func IsFatal(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Fatal
}

// FailureReason formats err as the reason stored on a FAILED document.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return EINTERNAL + ": " + err.Error()
	}
	return e.Code + ": " + e.Message
}
