package resp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, msg)
}
func Unauthorized(c *gin.Context, msg string) {
	Error(c, http.StatusUnauthorized, msg)
}
func Forbidden(c *gin.Context, msg string) {
	Error(c, http.StatusForbidden, msg)
}
func NotFound(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, msg)
}
func Conflict(c *gin.Context, msg string) {
	Error(c, http.StatusConflict, msg)
}

// ServerError logs err and answers with msg only; details never reach the client.
func ServerError(c *gin.Context, log *zap.Logger, msg string, err error) {
	log.Error(msg,
		zap.Error(err),
		zap.String("request_id", c.GetString("requestId")),
		zap.String("path", c.FullPath()),
	)
	Error(c, http.StatusInternalServerError, msg)
}
