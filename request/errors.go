package request

import "github.com/infigaming-com/go-currency/errors"

const (
	ErrCodeInvalidRequestTimeout = 10000 + iota
	ErrCodeInvalidSlowRequestThreshold
)

var (
	ErrInvalidRequestTimeout       = errors.NewError(ErrCodeInvalidRequestTimeout, "invalid request timeout", nil)
	ErrInvalidSlowRequestThreshold = errors.NewError(ErrCodeInvalidSlowRequestThreshold, "invalid slow request threshold", nil)
)
