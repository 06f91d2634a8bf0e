package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondError maps the service error sentinels to HTTP statuses. Unknown
// errors become a 500 without leaking internals past the message.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	switch {
	case apierr.IsValidation(err):
		status = http.StatusBadRequest
		code = "validation"
	case apierr.IsNotFound(err):
		status = http.StatusNotFound
		code = "not_found"
	case apierr.IsUnauthorized(err):
		status = http.StatusUnauthorized
		code = "unauthorized"
	case apierr.IsConflict(err):
		status = http.StatusConflict
		code = "conflict"
	case apierr.IsProvider(err):
		status = http.StatusBadGateway
		code = "provider"
	}

	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}
