package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrCompanyNotFound       = errors.New("company not found")
	ErrInvalidPaymentControl = errors.New("invalid payment control")
	ErrInvalidPaymentDate    = errors.New("invalid payment date")
	ErrInvalidPaymentAmount  = errors.New("invalid payment amount")
	ErrPaymentDateInFuture   = errors.New("payment date is in the future")
	ErrCompanyScopeMissing   = errors.New("company scope missing")
	ErrNoPaymentRegistered   = errors.New("no payment registered")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeCompanyNotFound       = "COMPANY_NOT_FOUND"
	ErrCodeInvalidPaymentControl = "INVALID_PAYMENT_CONTROL"
	ErrCodeInvalidPaymentDate    = "INVALID_PAYMENT_DATE"
	ErrCodeInvalidPaymentAmount  = "INVALID_PAYMENT_AMOUNT"
	ErrCodePaymentDateInFuture   = "PAYMENT_DATE_IN_FUTURE"
	ErrCodeCompanyScopeMissing   = "COMPANY_SCOPE_MISSING"
	ErrCodeNoPaymentRegistered   = "NO_PAYMENT_REGISTERED"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
)

// HTTPStatus maps an error to the status code a handler should answer with
func HTTPStatus(err error) int {
	var be *BusinessError
	if !errors.As(err, &be) {
		return http.StatusInternalServerError
	}

	switch be.Code {
	case ErrCodeCompanyNotFound, ErrCodeNoPaymentRegistered:
		return http.StatusNotFound
	case ErrCodeInvalidPaymentControl, ErrCodeInvalidPaymentDate,
		ErrCodeInvalidPaymentAmount, ErrCodePaymentDateInFuture:
		return http.StatusBadRequest
	case ErrCodeCompanyScopeMissing:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Wrap common errors with business context
func WrapCompanyNotFound(companyID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCompanyNotFound,
		fmt.Sprintf("Company with ID %s not found", companyID),
		ErrCompanyNotFound,
	)
}

func WrapNoPaymentRegistered(companyID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoPaymentRegistered,
		fmt.Sprintf("Company with ID %s has no registered payment", companyID),
		ErrNoPaymentRegistered,
	)
}

func WrapInvalidPaymentControl(control string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentControl,
		fmt.Sprintf("Payment control %q is not one of permanent, monthly, annual", control),
		ErrInvalidPaymentControl,
	)
}

func WrapInvalidPaymentDate(date string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentDate,
		fmt.Sprintf("Payment date %q must be formatted as yyyy-MM-dd", date),
		ErrInvalidPaymentDate,
	)
}

func WrapPaymentDateInFuture(date string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentDateInFuture,
		fmt.Sprintf("Payment date %s is after today", date),
		ErrPaymentDateInFuture,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapCompanyScopeMissing() *BusinessError {
	return NewBusinessError(
		ErrCodeCompanyScopeMissing,
		"Token is not bound to a company",
		ErrCompanyScopeMissing,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
