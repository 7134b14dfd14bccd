package util

const (
	ErrCodeValueNotFoundInContext = 10100 + iota
	ErrCodeInvalidValueInContext
)
