package currency

import (
	"fmt"

	"github.com/infigaming-com/go-currency/errors"
)

const (
	ErrCodeUnknownCurrencyCode = 30000 + iota
	ErrCodeInvalidAmount
	ErrCodeInvalidRateTable
)

type Error struct {
	baseErr *errors.Error
}

var (
	ErrUnknownCurrencyCode = NewError(ErrCodeUnknownCurrencyCode, "unknown currency code", nil, nil)
	ErrInvalidAmount       = NewError(ErrCodeInvalidAmount, "invalid amount", nil, nil)
	ErrInvalidRateTable    = NewError(ErrCodeInvalidRateTable, "invalid rate table", nil, nil)
)

func NewError(code int64, message string, cause error, details any) *Error {
	return &Error{
		baseErr: errors.NewError(code, message, cause).WithDetails(details),
	}
}

func unknownCurrencyCode(code string) *Error {
	return NewError(ErrCodeUnknownCurrencyCode, fmt.Sprintf("unknown currency code: %q", code), nil, code)
}

func (e *Error) Error() string {
	return e.baseErr.Error()
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.GetCode() == t.GetCode()
}

func (e *Error) GetCode() int64 {
	return e.baseErr.GetCode()
}

func (e *Error) GetMessage() string {
	return e.baseErr.GetMessage()
}

func (e *Error) Unwrap() error {
	return e.baseErr.Unwrap()
}

func (e *Error) GetDetails() any {
	return e.baseErr.GetDetails()
}
