package domain

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the category of a domain error so transport
// layers can map it to a status without string matching.
type ErrorCode string

const (
	CodeValidation          ErrorCode = "VALIDATION"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeForbidden           ErrorCode = "FORBIDDEN"
	CodeInvalidVehicleType  ErrorCode = "INVALID_VEHICLE_TYPE"
	CodeInvalidPrice        ErrorCode = "INVALID_PRICE"
	CodeIllegalTransition   ErrorCode = "ILLEGAL_TRANSITION"
	CodeDetailerUnavailable ErrorCode = "DETAILER_UNAVAILABLE"
	CodeNoDetailerAvailable ErrorCode = "NO_DETAILER_AVAILABLE"
	CodeAlreadyActive       ErrorCode = "ALREADY_ACTIVE"
	CodeNotActive           ErrorCode = "NOT_ACTIVE"
)

// Error is a recoverable domain error carried up to the API layer.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error returns the error message.
func (e *Error) Error() string {
	return e.Message
}

// IsCode reports whether err is a domain error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// IsNotFound reports whether err is a domain not-found error.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// NewValidationError creates a validation error.
func NewValidationError(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// NewNotFoundError creates a not-found error for the given entity and key.
func NewNotFoundError(entity, key string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found: %s", entity, key)}
}

// NewConflictError creates a concurrent-modification conflict error.
func NewConflictError(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// NewForbiddenError creates a forbidden error.
func NewForbiddenError(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// NewInvalidVehicleTypeError creates an error for an unsupported vehicle type.
func NewInvalidVehicleTypeError(vehicleType string) *Error {
	return &Error{Code: CodeInvalidVehicleType, Message: fmt.Sprintf("invalid vehicle type: %s", vehicleType)}
}

// NewInvalidPriceError creates an error for a non-positive catalog price.
func NewInvalidPriceError(msg string) *Error {
	return &Error{Code: CodeInvalidPrice, Message: msg}
}

// NewIllegalTransitionError creates an error for a rejected status transition.
func NewIllegalTransitionError(from, to string) *Error {
	return &Error{Code: CodeIllegalTransition, Message: fmt.Sprintf("illegal transition: %s -> %s", from, to)}
}

// NewDetailerUnavailableError creates an error for assigning an inactive detailer.
func NewDetailerUnavailableError(detailerID string) *Error {
	return &Error{Code: CodeDetailerUnavailable, Message: fmt.Sprintf("detailer unavailable: %s", detailerID)}
}

// NewNoDetailerAvailableError creates an error for auto-assignment with an empty roster.
func NewNoDetailerAvailableError() *Error {
	return &Error{Code: CodeNoDetailerAvailable, Message: "no active detailer available"}
}

// NewAlreadyActiveError creates an error for starting tracking that is already running.
func NewAlreadyActiveError(bookingID string) *Error {
	return &Error{Code: CodeAlreadyActive, Message: fmt.Sprintf("time tracking already active for booking %s", bookingID)}
}

// NewNotActiveError creates an error for stopping tracking that is not running.
func NewNotActiveError(bookingID string) *Error {
	return &Error{Code: CodeNotActive, Message: fmt.Sprintf("no active time tracking for booking %s", bookingID)}
}
