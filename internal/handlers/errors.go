// Package handlers provides HTTP handlers for API endpoints.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/secinto/hrms_backend/internal/middleware"
	"github.com/secinto/hrms_backend/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string              `json:"error"`
	Message   string              `json:"message"`
	Fields    []models.FieldError `json:"fields,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// respondError maps a core error kind onto a status code
// #IMPLEMENTATION_DECISION: Only internal failures are logged, their detail never reaches the client
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_failed",
			Message: "Input validation failed",
			Fields:  verr.Fields,
		})
	case models.IsValidationError(err):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
	case models.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case models.IsConflictError(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	case models.IsAuthError(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: err.Error(),
		})
	default:
		requestID := middleware.GetRequestID(c)
		logger.Error(op+" failed", zap.Error(err), zap.String("request_id", requestID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "internal_error",
			Message:   "An unexpected error occurred",
			RequestID: requestID,
		})
	}
}

// respondBadRequest reports an undecodable request body
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}

// requireActor extracts the acting identity or aborts with 401
func requireActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return models.Actor{}, false
	}
	return actor, true
}

// queryBool parses an optional boolean query flag
func queryBool(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "TRUE", "True", "yes":
		return true
	}
	return false
}
