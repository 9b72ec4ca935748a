// Package errors provides custom error types for the LedgerDesk API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User & company errors.
var (
	ErrUserNotFound    = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail  = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrCompanyNotFound = &AppError{Code: "COMPANY_NOT_FOUND", Message: "Company not found", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound     = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryHasChildren  = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has child categories", StatusCode: http.StatusConflict}
	ErrSelfParentCategory   = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", StatusCode: http.StatusBadRequest}
	ErrParentTypeMismatch   = &AppError{Code: "PARENT_TYPE_MISMATCH", Message: "Parent category must have the same type", StatusCode: http.StatusBadRequest}
	ErrCategoryTypeMismatch = &AppError{Code: "CATEGORY_TYPE_MISMATCH", Message: "Category does not belong to the transaction type", StatusCode: http.StatusBadRequest}
)

// Reference-entity errors.
var (
	ErrMethodNotFound   = &AppError{Code: "METHOD_NOT_FOUND", Message: "Payment method not found", StatusCode: http.StatusNotFound}
	ErrStorageNotFound  = &AppError{Code: "STORAGE_NOT_FOUND", Message: "Storage not found", StatusCode: http.StatusNotFound}
	ErrCustomerNotFound = &AppError{Code: "CUSTOMER_NOT_FOUND", Message: "Customer not found", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Transaction type must be inflow or outflow", StatusCode: http.StatusBadRequest}
	ErrTransactionArchived    = &AppError{Code: "TRANSACTION_ARCHIVED", Message: "Transaction is archived", StatusCode: http.StatusConflict}
	ErrTransactionNotArchived = &AppError{Code: "TRANSACTION_NOT_ARCHIVED", Message: "Transaction is not archived", StatusCode: http.StatusConflict}
)

// Invoice errors.
var (
	ErrInvoiceNotFound    = &AppError{Code: "INVOICE_NOT_FOUND", Message: "Invoice not found", StatusCode: http.StatusNotFound}
	ErrInvoiceAlreadyPaid = &AppError{Code: "INVOICE_ALREADY_PAID", Message: "Invoice is already marked as paid", StatusCode: http.StatusConflict}
	ErrScheduleNotFound   = &AppError{Code: "SCHEDULE_NOT_FOUND", Message: "Scheduled invoice not found", StatusCode: http.StatusNotFound}
)

// Pending-transaction & import errors.
var (
	ErrPendingNotFound = &AppError{Code: "PENDING_NOT_FOUND", Message: "Pending transaction not found", StatusCode: http.StatusNotFound}
	ErrEmptyImport     = &AppError{Code: "EMPTY_IMPORT", Message: "No usable rows found in the uploaded file", StatusCode: http.StatusBadRequest}
)

// Permission errors.
var (
	ErrPermissionNotFound = &AppError{Code: "PERMISSION_NOT_FOUND", Message: "Permission entry not found", StatusCode: http.StatusNotFound}
)
