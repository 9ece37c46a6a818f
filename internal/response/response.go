package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/realtruedate/backend/internal/errors"
)

// Every endpoint answers with this fixed envelope; Code duplicates the HTTP
// status so clients reading only the body see the same number.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Details any    `json:"details,omitempty"`
	Code    int    `json:"code"`
}

func Success(c *gin.Context, data any, message string, code int) {
	if message == "" {
		message = "Request was successful"
	}
	c.JSON(code, Envelope{
		Status:  "success",
		Message: message,
		Data:    data,
		Code:    code,
	})
}

func OK(c *gin.Context, data any, message string) {
	Success(c, data, message, http.StatusOK)
}

func Created(c *gin.Context, data any, message string) {
	Success(c, data, message, http.StatusCreated)
}

func Error(c *gin.Context, message string, details any, code int) {
	if message == "" {
		message = "An error occurred"
	}
	c.JSON(code, Envelope{
		Status:  "error",
		Message: message,
		Details: details,
		Code:    code,
	})
}

// Err renders a taxonomy error; anything else collapses to the generic 500
// envelope via the mapper.
func Err(c *gin.Context, err error) {
	e := apperr.Map(err)
	Error(c, e.Message, e.Details, e.Status)
}
