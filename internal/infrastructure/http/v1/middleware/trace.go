package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appctx "stockledger/internal/core/context"
)

// Request correlation headers. Both are echoed on the response.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace stamps every request with a request id, honoring one sent by the client.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := appctx.RequestMeta{
			RequestID: c.GetHeader(HeaderRequestID),
			TraceID:   c.GetHeader(HeaderTraceID),
			ClientIP:  c.ClientIP(),
		}
		if meta.RequestID == "" {
			meta.RequestID = uuid.NewString()
		}
		if meta.TraceID == "" {
			meta.TraceID = meta.RequestID
		}

		c.Request = c.Request.WithContext(appctx.WithRequest(c.Request.Context(), meta))
		c.Header(HeaderRequestID, meta.RequestID)
		c.Header(HeaderTraceID, meta.TraceID)

		c.Next()
	}
}
