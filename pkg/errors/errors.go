package errors

import (
	"fmt"
	"net/http"
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"
	CodeTimeout          = "TIMEOUT"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInvalidSelection = "INVALID_SELECTION"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
	CodeDuplicateBooking = "DUPLICATE_BOOKING"
	CodePromoMinimum     = "PROMO_MINIMUM_NOT_MET"
	CodeTransaction      = "TRANSACTION_FAILED"
)

// AppError is the structured error carried from the service layer to the
// transport layer. Code is machine-readable, Message is user-facing,
// Details hold whatever the caller needs to correct the request.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// InvalidSelection reports a date/time pair outside the experience's
// advertised availability.
func InvalidSelection(date, timeSlot string) *AppError {
	return &AppError{
		Code:       CodeInvalidSelection,
		Message:    "Selected date or time is not available",
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"date": date,
			"time": timeSlot,
		},
	}
}

// CapacityExceeded reports insufficient remaining capacity for a slot.
func CapacityExceeded(available, requested int) *AppError {
	return &AppError{
		Code:       CodeCapacityExceeded,
		Message:    "Not enough slots available",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"available": available,
			"requested": requested,
		},
	}
}

// DuplicateBooking reports an active booking already held by the same
// email for the same experience, date and time.
func DuplicateBooking(existingBookingID string) *AppError {
	return &AppError{
		Code:       CodeDuplicateBooking,
		Message:    "You already have a booking for this slot",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"booking_id": existingBookingID,
		},
	}
}

// PromoMinimumNotMet reports a recognized promo code whose qualifying
// minimum was not reached. This aborts the whole booking.
func PromoMinimumNotMet(minAmount float64) *AppError {
	return &AppError{
		Code:       CodePromoMinimum,
		Message:    fmt.Sprintf("Promo code requires a minimum purchase of %.0f", minAmount),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"min_amount": minAmount,
		},
	}
}

// TransactionFailed wraps a store-level commit failure. The request can
// be retried by the caller since no partial state was committed.
func TransactionFailed(err error) *AppError {
	return &AppError{
		Code:       CodeTransaction,
		Message:    "Failed to complete booking transaction",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
