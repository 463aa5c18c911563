// Package render writes API responses.
package render

import (
	"gallery-la/internal/errs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error renders err as {"error": message, "code": code}. Record and storage
// failures are logged since their cause is not shown to the client.
func Error(c *gin.Context, log *zap.Logger, err error) {
	code := errs.CodeOf(err)
	status := code.HTTPStatus()
	if status >= 500 {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": errs.Message(err), "code": code})
}

// BadRequest renders a validation error for a body or query that could not
// be decoded.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(errs.CodeValidation.HTTPStatus(), gin.H{"error": message, "code": errs.CodeValidation})
}
