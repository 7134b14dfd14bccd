package util

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/infigaming-com/go-currency/errors"
	"github.com/stretchr/testify/assert"
)

func TestCorrelationIdFromCtx(t *testing.T) {
	tests := []struct {
		name        string
		setupCtx    func() context.Context
		wantValue   string
		wantErrCode int64
	}{
		{
			name: "correlation id present",
			setupCtx: func() context.Context {
				return CorrelationIdToCtx(context.Background(), "abc-123")
			},
			wantValue: "abc-123",
		},
		{
			name:        "correlation id missing",
			setupCtx:    context.Background,
			wantErrCode: ErrCodeValueNotFoundInContext,
		},
		{
			name: "correlation id of wrong type",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), CorrelationIdKey, 42)
			},
			wantErrCode: ErrCodeInvalidValueInContext,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := CorrelationIdFromCtx(tt.setupCtx())
			if tt.wantErrCode != 0 {
				var codedErr *errors.Error
				assert.True(t, stderrors.As(err, &codedErr))
				assert.Equal(t, tt.wantErrCode, codedErr.GetCode())
				assert.Empty(t, value)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}
