package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/exam-studio/internal/exam"
	"github.com/SAP-F-2025/exam-studio/internal/extract"
	"github.com/SAP-F-2025/exam-studio/internal/services"
	"github.com/SAP-F-2025/exam-studio/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

// LogRequest logs an incoming request with the caller's identity
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{
		"remote_addr", c.ClientIP(),
		"user_id", c.GetString("user_id"),
	}, additionalFields...)
	h.log(c).DebugContext(c.Request.Context(), message, fields...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{
		"user_id", c.GetString("user_id"),
	}, additionalFields...)
	h.log(c).LogError(err, message, fields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{Message: message}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.log(c).WarnContext(c.Request.Context(), message, "status_code", statusCode, "error", err)
	}

	c.AbortWithStatusJSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{Message: message, Data: data})
}

// BadRequest reports a request that could not be decoded
func (h *BaseHandler) BadRequest(c *gin.Context, err error) {
	h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
}

// handleServiceError maps service errors onto HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		status := http.StatusUnprocessableEntity
		if services.IsConflict(err) {
			status = http.StatusConflict
		}
		h.RespondWithError(c, status, businessRuleError.Message, err, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	var extractionError *services.ExtractionError
	if errors.As(err, &extractionError) {
		h.RespondWithError(c, http.StatusBadGateway, extractionError.Message, err)
		return
	}

	switch {
	case errors.Is(err, services.ErrBankNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Question bank not found", err)
	case errors.Is(err, services.ErrQuestionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Question not found", err)
	case errors.Is(err, services.ErrSessionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Exam session not found or expired", err)
	case errors.Is(err, services.ErrResultNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Exam result not found", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, services.ErrEmptyBank):
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Question bank has no questions", err)
	case errors.Is(err, services.ErrInvalidImport):
		h.RespondWithError(c, http.StatusBadRequest, "Invalid import file", err, err.Error())
	case errors.Is(err, services.ErrUnsupportedFile):
		h.RespondWithError(c, http.StatusUnsupportedMediaType, extract.ErrUnsupportedFile.Error(), err)
	case errors.Is(err, exam.ErrInvalidRange):
		h.RespondWithError(c, http.StatusBadRequest, "Invalid question range", err, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		h.RespondWithError(c, http.StatusUnauthorized, "User not authenticated", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
