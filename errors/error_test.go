package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("message without cause", func(t *testing.T) {
		err := NewError(100, "something failed", nil)
		assert.Equal(t, "something failed", err.Error())
		assert.Equal(t, int64(100), err.GetCode())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("message with cause", func(t *testing.T) {
		cause := stderrors.New("boom")
		err := NewError(100, "something failed", cause)
		assert.Equal(t, "something failed: boom", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("details and status code", func(t *testing.T) {
		err := NewError(100, "bad", nil).
			WithDetails(map[string]string{"field": "amount"}).
			WithStatusCode(http.StatusBadRequest)
		assert.Equal(t, map[string]string{"field": "amount"}, err.GetDetails())
		assert.Equal(t, http.StatusBadRequest, err.GetStatusCode())
	})

	t.Run("is matches on code", func(t *testing.T) {
		sentinel := NewError(200, "unknown", nil)
		err := fmt.Errorf("wrapped: %w", NewError(200, "unknown currency: XYZ", nil).WithDetails("XYZ"))
		assert.ErrorIs(t, err, sentinel)
		assert.NotErrorIs(t, err, NewError(201, "unknown", nil))
	})
}
