package utils

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body shape the frontend expects: a human-readable
// message plus optional diagnostic detail (tool stderr, parse errors).
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ResponseWithError writes a JSON error body. err may be nil when the message
// alone is enough (validation failures).
func ResponseWithError(c *gin.Context, statusCode int, message string, err error) {
	body := ErrorResponse{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	c.JSON(statusCode, body)
}

// ResponseWithMessage writes a plain `{message}` success body.
func ResponseWithMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}
