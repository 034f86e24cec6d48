package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderKey is echoed back on every response.
const HeaderKey = "X-Request-ID"

const contextKey = "request_id"

// maxLength bounds client-provided ids so they cannot bloat logs.
const maxLength = 64

// Middleware assigns a request id, reusing a client-supplied one when it is short enough.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(HeaderKey)
		if reqID == "" || len(reqID) > maxLength {
			reqID = uuid.NewString()
		}

		c.Set(contextKey, reqID)
		c.Writer.Header().Set(HeaderKey, reqID)

		c.Next()
	}
}

// Value returns the request ID stored in the Gin context.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}
