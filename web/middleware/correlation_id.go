package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/infigaming-com/go-currency/util"
)

const CorrelationIdKey string = "X-CORRELATION-ID"

// CorrelationIdMiddleware reuses the caller's X-CORRELATION-ID or generates one, echoes it in
// the response and stores it in the request context.
func CorrelationIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.GetHeader(CorrelationIdKey)
		if correlationId == "" {
			correlationId = uuid.New().String()
		}
		c.Header(CorrelationIdKey, correlationId)
		ctx := util.CorrelationIdToCtx(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
