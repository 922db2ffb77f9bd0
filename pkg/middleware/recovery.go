package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recordbook/recordbook/pkg/logger"
	"github.com/recordbook/recordbook/pkg/response"
)

// Recovery turns a panic into a logged 500 with the generic JSON message.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.L().Error().
			Str("request_id", c.GetString(response.RequestIDKey)).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": response.UnexpectedMessage})
	})
}

// NotFound is the JSON NoRoute handler.
func NotFound(c *gin.Context) {
	response.Message(c, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed is the JSON NoMethod handler.
func MethodNotAllowed(c *gin.Context) {
	response.Message(c, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// JSONFallbacks makes unmatched routes and methods answer with JSON bodies.
func JSONFallbacks(r *gin.Engine) {
	r.HandleMethodNotAllowed = true
	r.NoRoute(NotFound)
	r.NoMethod(MethodNotAllowed)
}
