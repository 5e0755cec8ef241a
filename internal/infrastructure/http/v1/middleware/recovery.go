// Package middleware holds the gin middleware chain of the ledger API.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/pkg/logger"
)

// Recovery turns a handler panic into a 500. The stack goes to the log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				"panic", r,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)

			// ErrorHandler has already returned by now, so the body is written here.
			_ = c.Error(apperror.NewInternal(fmt.Errorf("panic: %v", r)))
			c.AbortWithStatusJSON(http.StatusInternalServerError, internalError(c))
		}()
		c.Next()
	}
}
