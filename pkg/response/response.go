// Package response writes JSON bodies for handler results and failures.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recordbook/recordbook/internal/apperr"
	"github.com/recordbook/recordbook/pkg/logger"
)

// UnexpectedMessage is the body message for any failure outside the apperr
// taxonomy.
const UnexpectedMessage = "An unexpected error occurred"

// Error writes err with the status apperr assigns to it and aborts the
// chain. 500s are logged and their details replaced with a generic message.
func Error(c *gin.Context, err error) {
	status := apperr.Status(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		logger.L().Error().Err(err).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.AbortWithStatusJSON(status, gin.H{"message": UnexpectedMessage})
		return
	}

	body := gin.H{"message": http.StatusText(status)}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Msg != "" {
			body["message"] = ae.Msg
		}
		if len(ae.Fields) > 0 {
			body["errors"] = ae.Fields
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// Message writes {"message": msg} with status.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// RequestIDKey is the gin context key the request id middleware stores under.
const RequestIDKey = "request_id"
