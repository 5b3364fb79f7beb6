package response

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/course-gpa-api/pkg/errors"
)

// ErrorBody is the uniform error contract returned by every endpoint.
type ErrorBody struct {
	Message   string `json:"message"`
	Status    int    `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// now is swapped in tests.
var now = time.Now

// JSON sends a success payload as-is.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Text sends a plain text confirmation.
func Text(c *gin.Context, status int, message string) {
	c.Header("Cache-Control", "no-store")
	c.String(status, message)
}

// Error converts err into the common error body. Errors that are not typed domain errors
// are reported as a generic internal error and the cause is only attached to the gin context.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternal
	}
	appErr := appErrors.FromError(err)
	_ = c.Error(err)

	status := appErr.HTTPStatus()
	message := appErr.Message
	if appErr.IsInternal() {
		status = appErrors.ErrInternal.Status
		message = appErrors.ErrInternal.Message
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.AbortWithStatusJSON(status, ErrorBody{
		Message:   message,
		Status:    status,
		Timestamp: now().UnixMilli(),
	})
}

// Recovery turns panics into the internal error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		Error(c, fmt.Errorf("panic recovered: %v", recovered))
	})
}
