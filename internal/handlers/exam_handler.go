package handlers

import (
	"context"
	"net/http"

	"github.com/SAP-F-2025/exam-studio/internal/services"
	"github.com/SAP-F-2025/exam-studio/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewExamHandler(examService services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// StartExam opens a session over a question range of a bank
// @Summary Start exam
// @Tags exams
// @Accept json
// @Produce json
// @Param exam body services.StartExamRequest true "Bank and 1-based inclusive range"
// @Success 201 {object} services.SessionView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams [post]
func (h *ExamHandler) StartExam(c *gin.Context) {
	var req services.StartExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	h.LogRequest(c, "Starting exam", "bank_id", req.BankID, "start", req.Start, "end", req.End)

	view, err := h.examService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetExam returns the current state of a session
// @Summary Get exam session
// @Tags exams
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} services.SessionView
// @Failure 404 {object} ErrorResponse
// @Router /exams/{sid} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	h.withSession(c, h.examService.Get)
}

// AbandonExam discards a session without recording a result
// @Summary Abandon exam
// @Tags exams
// @Param sid path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /exams/{sid} [delete]
func (h *ExamHandler) AbandonExam(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "sid")
	if sessionID == "" {
		return
	}
	if err := h.examService.Abandon(c.Request.Context(), sessionID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SelectOption answers a single or multiple question
// @Summary Select option
// @Tags exams
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param body body services.SelectOptionRequest true "Option label"
// @Success 200 {object} services.SessionView
// @Router /exams/{sid}/options [post]
func (h *ExamHandler) SelectOption(c *gin.Context) {
	var req services.SelectOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	h.withSession(c, func(ctx context.Context, sessionID string) (*services.SessionView, error) {
		return h.examService.SelectOption(ctx, sessionID, &req)
	})
}

// SetDropdownValue fills one dropdown slot
// @Summary Set dropdown value
// @Tags exams
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param body body services.SetDropdownRequest true "Slot and value"
// @Success 200 {object} services.SessionView
// @Router /exams/{sid}/dropdowns [post]
func (h *ExamHandler) SetDropdownValue(c *gin.Context) {
	var req services.SetDropdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	h.withSession(c, func(ctx context.Context, sessionID string) (*services.SessionView, error) {
		return h.examService.SetDropdownValue(ctx, sessionID, &req)
	})
}

// SelectDragItem picks the option to place with the next drop zone click
// @Summary Select drag item
// @Tags exams
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param body body services.SelectDragItemRequest true "Option label"
// @Success 200 {object} services.SessionView
// @Router /exams/{sid}/drag-item [post]
func (h *ExamHandler) SelectDragItem(c *gin.Context) {
	var req services.SelectDragItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	h.withSession(c, func(ctx context.Context, sessionID string) (*services.SessionView, error) {
		return h.examService.SelectDragItem(ctx, sessionID, &req)
	})
}

// ClickDropZone places the selected item into a zone
// @Summary Click drop zone
// @Tags exams
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param body body services.DropZoneRequest true "Zone index"
// @Success 200 {object} services.SessionView
// @Router /exams/{sid}/drop-zones [post]
func (h *ExamHandler) ClickDropZone(c *gin.Context) {
	var req services.DropZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	h.withSession(c, func(ctx context.Context, sessionID string) (*services.SessionView, error) {
		return h.examService.ClickDropZone(ctx, sessionID, &req)
	})
}

// @Router /exams/{sid}/flag [post]
func (h *ExamHandler) ToggleFlag(c *gin.Context) {
	h.withSession(c, h.examService.ToggleFlag)
}

// @Router /exams/{sid}/reveal [post]
func (h *ExamHandler) Reveal(c *gin.Context) {
	h.withSession(c, h.examService.Reveal)
}

// Navigate moves to the next or previous question or jumps to an index
// @Summary Navigate
// @Tags exams
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param body body services.NavigateRequest true "Direction or index"
// @Success 200 {object} services.SessionView
// @Router /exams/{sid}/navigate [post]
func (h *ExamHandler) Navigate(c *gin.Context) {
	var req services.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	h.withSession(c, func(ctx context.Context, sessionID string) (*services.SessionView, error) {
		return h.examService.Navigate(ctx, sessionID, &req)
	})
}

// SubmitExam scores the session and records the result
// @Summary Submit exam
// @Tags exams
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} services.SubmitResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /exams/{sid}/submit [post]
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "sid")
	if sessionID == "" {
		return
	}

	h.LogRequest(c, "Submitting exam", "session_id", sessionID)

	resp, err := h.examService.Submit(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExamHandler) withSession(c *gin.Context, fn func(ctx context.Context, sessionID string) (*services.SessionView, error)) {
	sessionID := ParseStringIDParam(c, "sid")
	if sessionID == "" {
		return
	}

	view, err := fn(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
