package util

import (
	"coursehub_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the uniform envelope for all API replies.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// HandleServiceError maps the service error taxonomy to distinct HTTP
// statuses so callers can tell a validation failure from an exhausted
// retry budget or a missing resource.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case IsValidation(err):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c)
	case errors.Is(err, ErrCourseNotFound),
		errors.Is(err, ErrQuizNotFound),
		errors.Is(err, ErrUserNotFound):
		NotFound(c)
	case errors.Is(err, ErrAlreadyEnrolled):
		Conflict(c, err.Error())
	case errors.Is(err, ErrRetryLimitReached):
		TooManyRequests(c, err.Error())
	default:
		LogInternalError(c, err)
	}
}
