package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medconnect-server/internal/models"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Success: false,
		Message: errorMessage,
		Error:   http.StatusText(statusCode),
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, errorMessage)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, errorMessage)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	Error(c, http.StatusForbidden, errorMessage)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, errorMessage)
}

// Conflict sends a 409 Conflict error response.
func Conflict(c *gin.Context, errorMessage string) {
	Error(c, http.StatusConflict, errorMessage)
}

// InternalServerError logs err and sends a 500 response that does not expose it.
func InternalServerError(c *gin.Context, err error) {
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
	Error(c, http.StatusInternalServerError, "Something went wrong, please try again later")
}

// RespondError maps a domain error to its HTTP status and sends it.
func RespondError(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ResponseData{
			Success: false,
			Message: "Validation failed",
			Error:   ve.Error(),
			Errors:  ve.Fields,
		})
	case errors.Is(err, models.ErrDuplicateEmail):
		BadRequest(c, "User with this email already exists")
	case errors.Is(err, models.ErrInvalidCredentials):
		BadRequest(c, "Invalid credentials")
	case errors.Is(err, models.ErrInvalidSignature):
		BadRequest(c, "Payment verification failed")
	case errors.Is(err, models.ErrInvalidRole):
		BadRequest(c, err.Error())
	case errors.Is(err, models.ErrRoleMismatch):
		Unauthorized(c, err.Error())
	case errors.Is(err, models.ErrAccountInactive):
		Unauthorized(c, "Account is deactivated")
	case errors.Is(err, models.ErrForbidden):
		Forbidden(c, "You do not have permission to access this resource")
	case errors.Is(err, models.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrConflict):
		Conflict(c, err.Error())
	default:
		InternalServerError(c, err)
	}
}
