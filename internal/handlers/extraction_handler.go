package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-studio/internal/services"
	"github.com/SAP-F-2025/exam-studio/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExtractionHandler struct {
	BaseHandler
	extractionService services.ExtractionService
}

func NewExtractionHandler(extractionService services.ExtractionService, logger utils.Logger) *ExtractionHandler {
	return &ExtractionHandler{
		BaseHandler:       NewBaseHandler(logger),
		extractionService: extractionService,
	}
}

// ParseText turns pasted text into questions
// @Summary Parse questions from text
// @Tags extraction
// @Accept json
// @Produce json
// @Param body body services.ParseTextRequest true "Raw text"
// @Success 200 {object} services.ExtractionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /extract/text [post]
func (h *ExtractionHandler) ParseText(c *gin.Context) {
	var req services.ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	resp, err := h.extractionService.ParseText(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ParseFile turns an uploaded image or PDF into questions
// @Summary Parse questions from a file
// @Tags extraction
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image or PDF"
// @Success 200 {object} services.ExtractionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /extract/file [post]
func (h *ExtractionHandler) ParseFile(c *gin.Context) {
	filename, data, err := readUpload(c)
	if err != nil {
		h.uploadError(c, err)
		return
	}

	h.LogRequest(c, "Parsing uploaded file", "filename", filename, "size", len(data))

	resp, err := h.extractionService.ParseFile(c.Request.Context(), filename, data)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateQuestions asks the model for new questions on a topic
// @Summary Generate questions
// @Tags extraction
// @Accept json
// @Produce json
// @Param body body services.GenerateQuestionsRequest true "Topic and count"
// @Success 200 {object} services.ExtractionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /extract/generate [post]
func (h *ExtractionHandler) GenerateQuestions(c *gin.Context) {
	var req services.GenerateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	resp, err := h.extractionService.GenerateFromTopic(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
