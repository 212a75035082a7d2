package helper

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindInvalidArgument ErrorKind = "INVALID_ARGUMENT"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindConflict        ErrorKind = "CONFLICT"
	KindStorage         ErrorKind = "STORAGE_ERROR"
	KindUnexpected      ErrorKind = "UNEXPECTED"
)

// AppError is what services return; controllers translate it with FromError.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

func InvalidArgument(format string, args ...any) error {
	return &AppError{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func StorageError(err error, format string, args ...any) error {
	return &AppError{Kind: KindStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the taxonomy bucket of err, looking through pkg/errors wraps.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return KindConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return KindInvalidArgument
	}
	return KindUnexpected
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
