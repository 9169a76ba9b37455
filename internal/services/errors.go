package services

import "fmt"

type ErrorCode string

const (
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrAlreadyClaimed ErrorCode = "ALREADY_CLAIMED"
	ErrBudgetExceeded ErrorCode = "BUDGET_EXCEEDED"
	ErrInvalidStatus  ErrorCode = "INVALID_STATUS"
	ErrDatabaseError  ErrorCode = "DATABASE_ERROR"
)

// DomainError carries a machine-readable code up to the handler layer, which
// maps it onto an HTTP status.
type DomainError struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewDomainError(message string, code ErrorCode, err error) *DomainError {
	return &DomainError{Message: message, Code: code, Err: err}
}

func ErrorCodeOf(err error) ErrorCode {
	if derr, ok := err.(*DomainError); ok {
		return derr.Code
	}
	return ""
}
