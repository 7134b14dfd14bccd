package rate

import "github.com/infigaming-com/go-currency/errors"

const (
	ErrCodeRequestFailed = 20000 + iota
	ErrCodeUnexpectedStatus
	ErrCodeMalformedResponse
	ErrCodeMissingRates
	ErrCodeInvalidRate
)

var (
	ErrRequestFailed     = errors.NewError(ErrCodeRequestFailed, "rate request failed", nil)
	ErrUnexpectedStatus  = errors.NewError(ErrCodeUnexpectedStatus, "unexpected rate provider status", nil)
	ErrMalformedResponse = errors.NewError(ErrCodeMalformedResponse, "malformed rate provider response", nil)
	ErrMissingRates      = errors.NewError(ErrCodeMissingRates, "rate provider response has no rates", nil)
	ErrInvalidRate       = errors.NewError(ErrCodeInvalidRate, "rate provider returned an invalid rate", nil)
)
