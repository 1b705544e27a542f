package response

import (
	"errors"
	"net/http"

	"account-admin-svc/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const unauthenticatedMessage = "Could not validate credentials"

func SendError(c *gin.Context, statusCode int, errorText, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   errorText,
		"message": message,
	})
}

// Unauthenticated writes the uniform 401 used for every authentication failure.
func Unauthenticated(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	SendError(c, http.StatusUnauthorized, "Unauthorized", unauthenticatedMessage)
}

// HandleError maps service errors to responses. Validation errors carry
// their own message; everything unknown is a generic 500.
func HandleError(c *gin.Context, err error, operation string) {
	var validationErr *ValidationError

	switch {
	case errors.As(err, &validationErr):
		SendError(c, http.StatusBadRequest, "Invalid request", validationErr.Error())
	case errors.Is(err, models.ErrEmailTaken):
		SendError(c, http.StatusBadRequest, "Email already registered", "An account with this email already exists")
	case errors.Is(err, models.ErrInvalidParams):
		SendError(c, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		SendError(c, http.StatusUnauthorized, "Unauthorized", "Incorrect email or password")
	case errors.Is(err, models.ErrUnauthenticated):
		Unauthenticated(c)
	case errors.Is(err, models.ErrInactiveAccount):
		SendError(c, http.StatusBadRequest, "Inactive account", "This account has been deactivated")
	case errors.Is(err, models.ErrUserNotFound):
		SendError(c, http.StatusNotFound, "User not found", "No user found with the provided ID")
	case errors.Is(err, models.ErrTooManyAttempts):
		SendError(c, http.StatusTooManyRequests, "Too many attempts", "Too many failed login attempts, try again later")
	default:
		logrus.WithError(err).WithField("operation", operation).Error("Request failed")
		SendError(c, http.StatusInternalServerError, "Internal server error", "The request could not be completed")
	}
}

// ValidationError carries a client-facing description of invalid input.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid wraps err as a ValidationError; nil stays nil.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}
