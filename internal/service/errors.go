package service

import (
	"errors"
	"fmt"

	"go-inventory-tracker/pkg/validator"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInsufficientStock
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// ErrInsufficientStock is wrapped by every insufficient stock AppError.
var ErrInsufficientStock = errors.New("insufficient stock")

// AppError is the single error type services hand to the transport layer.
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  []*validator.ErrorResponse
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func ValidationFailed(fields []*validator.ErrorResponse) *AppError {
	return &AppError{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func Invalid(field, tag, message string) *AppError {
	return ValidationFailed([]*validator.ErrorResponse{{Field: field, Tag: tag, Message: message}})
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func InsufficientStock(message string) *AppError {
	return &AppError{Kind: KindInsufficientStock, Message: message, Err: ErrInsufficientStock}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// KindOf reports the kind of err; anything that is not an AppError is internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// asAppError passes AppErrors through and wraps everything else as internal.
func asAppError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Internal(err)
}

func validate(input interface{}) error {
	if errs := validator.ValidateStruct(input); len(errs) > 0 {
		return ValidationFailed(errs)
	}
	return nil
}
