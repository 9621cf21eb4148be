package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/services"
	"github.com/SAP-F-2025/exam-studio/internal/utils"
	"github.com/gin-gonic/gin"
)

type BankHandler struct {
	BaseHandler
	bankService services.BankService
}

func NewBankHandler(bankService services.BankService, logger utils.Logger) *BankHandler {
	return &BankHandler{
		BaseHandler: NewBaseHandler(logger),
		bankService: bankService,
	}
}

// ListBanks returns the summary of every bank
// @Summary List question banks
// @Tags banks
// @Produce json
// @Success 200 {array} models.BankSummary
// @Router /banks [get]
func (h *BankHandler) ListBanks(c *gin.Context) {
	banks, err := h.bankService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, banks)
}

// CreateBank creates an empty bank
// @Summary Create question bank
// @Tags banks
// @Accept json
// @Produce json
// @Param bank body services.CreateBankRequest true "Bank name"
// @Success 201 {object} models.QuestionBank
// @Failure 400 {object} ErrorResponse
// @Router /banks [post]
func (h *BankHandler) CreateBank(c *gin.Context) {
	var req services.CreateBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	bank, err := h.bankService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bank)
}

// GetBank returns a bank with its questions
// @Summary Get question bank
// @Tags banks
// @Produce json
// @Param id path string true "Bank ID"
// @Success 200 {object} models.QuestionBank
// @Failure 404 {object} ErrorResponse
// @Router /banks/{id} [get]
func (h *BankHandler) GetBank(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	bank, err := h.bankService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bank)
}

// RenameBank changes a bank's name
// @Summary Rename question bank
// @Tags banks
// @Accept json
// @Produce json
// @Param id path string true "Bank ID"
// @Param bank body services.RenameBankRequest true "New name"
// @Success 200 {object} models.QuestionBank
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /banks/{id} [put]
func (h *BankHandler) RenameBank(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.RenameBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	bank, err := h.bankService.Rename(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bank)
}

// DeleteBank removes a bank and its questions
// @Summary Delete question bank
// @Tags banks
// @Param id path string true "Bank ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /banks/{id} [delete]
func (h *BankHandler) DeleteBank(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.bankService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReplaceBanks overwrites the whole bank list
// @Summary Replace all question banks
// @Tags banks
// @Accept json
// @Param banks body []models.QuestionBank true "Every bank"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Router /banks [put]
func (h *BankHandler) ReplaceBanks(c *gin.Context) {
	var banks []*models.QuestionBank
	if err := c.ShouldBindJSON(&banks); err != nil {
		h.BadRequest(c, err)
		return
	}

	h.LogRequest(c, "Replacing all banks", "bank_count", len(banks))

	if err := h.bankService.ReplaceAll(c.Request.Context(), banks); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveQuestion upserts one question of a bank
// @Summary Save question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Bank ID"
// @Param question_id path string true "Question ID"
// @Param question body models.Question true "Question"
// @Success 200 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /banks/{id}/questions/{question_id} [put]
func (h *BankHandler) SaveQuestion(c *gin.Context) {
	bankID := ParseStringIDParam(c, "id")
	if bankID == "" {
		return
	}
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		h.BadRequest(c, err)
		return
	}
	question.ID = questionID

	saved, err := h.bankService.SaveQuestion(c.Request.Context(), bankID, &question)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DeleteQuestion removes one question from a bank
// @Summary Delete question
// @Tags questions
// @Param id path string true "Bank ID"
// @Param question_id path string true "Question ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /banks/{id}/questions/{question_id} [delete]
func (h *BankHandler) DeleteQuestion(c *gin.Context) {
	bankID := ParseStringIDParam(c, "id")
	if bankID == "" {
		return
	}
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	if err := h.bankService.DeleteQuestion(c.Request.Context(), bankID, questionID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddQuestions appends a batch of parsed questions
// @Summary Add questions
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Bank ID"
// @Param questions body services.AddQuestionsRequest true "Questions"
// @Success 200 {object} services.AddQuestionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /banks/{id}/questions [post]
func (h *BankHandler) AddQuestions(c *gin.Context) {
	bankID := ParseStringIDParam(c, "id")
	if bankID == "" {
		return
	}

	var req services.AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	resp, err := h.bankService.AddQuestions(c.Request.Context(), bankID, req.Questions)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
