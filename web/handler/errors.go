package handler

import (
	"errors"
	"net/http"

	"github.com/infigaming-com/go-currency/currency"
)

const (
	ErrCodeInvalidRequest = 40000 + iota
	ErrCodeInternal
)

type ErrorResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorToStatusCode maps currency errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, currency.ErrUnknownCurrencyCode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, currency.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toErrorResponse(err error) ErrorResponse {
	var currencyErr *currency.Error
	if errors.As(err, &currencyErr) {
		return ErrorResponse{
			Code:    currencyErr.GetCode(),
			Message: currencyErr.GetMessage(),
			Details: currencyErr.GetDetails(),
		}
	}
	return ErrorResponse{Code: ErrCodeInternal, Message: "internal error"}
}
