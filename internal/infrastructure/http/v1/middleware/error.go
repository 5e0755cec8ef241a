package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	appctx "stockledger/internal/core/context"
	"stockledger/internal/infrastructure/http/v1/dto"
	"stockledger/pkg/logger"
)

// ErrorHandler renders the last error a handler registered as {code, message, details}.
// An AppError keeps its status; anything else is logged and answered with a bare 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		ctx := c.Request.Context()
		err := c.Errors.Last().Err

		appErr, ok := apperror.AsAppError(err)
		if !ok {
			logger.Error(ctx, "unhandled error", "error", err)
			c.JSON(http.StatusInternalServerError, internalError(c))
			return
		}

		if appErr.HTTPStatus >= http.StatusInternalServerError || appErr.Err != nil {
			logger.Error(ctx, "request failed", "code", appErr.Code, "cause", appErr.Err)
		}
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		})
	}
}

func internalError(c *gin.Context) dto.ErrorResponse {
	return dto.ErrorResponse{
		Code:    apperror.CodeInternal,
		Message: "Internal server error",
		Details: map[string]any{"request_id": appctx.RequestID(c.Request.Context())},
	}
}
