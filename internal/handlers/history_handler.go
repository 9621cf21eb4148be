package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-studio/internal/repositories"
	"github.com/SAP-F-2025/exam-studio/internal/services"
	"github.com/SAP-F-2025/exam-studio/internal/utils"
	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	BaseHandler
	historyService services.HistoryService
	exportService  services.ImportExportService
}

func NewHistoryHandler(historyService services.HistoryService, exportService services.ImportExportService, logger utils.Logger) *HistoryHandler {
	return &HistoryHandler{
		BaseHandler:    NewBaseHandler(logger),
		historyService: historyService,
		exportService:  exportService,
	}
}

// ListResults returns exam results, most recent first
// @Summary List exam history
// @Tags history
// @Produce json
// @Param bank_id query string false "Only results of this bank"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.HistoryListResponse
// @Router /history [get]
func (h *HistoryHandler) ListResults(c *gin.Context) {
	var filters repositories.HistoryFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.BadRequest(c, err)
		return
	}

	resp, err := h.historyService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Router /history/{id} [get]
func (h *HistoryHandler) GetResult(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	result, err := h.historyService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Router /history/{id} [delete]
func (h *HistoryHandler) DeleteResult(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.historyService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportHistory downloads every result as a spreadsheet
// @Summary Export history
// @Tags history
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /history/export.xlsx [get]
func (h *HistoryHandler) ExportHistory(c *gin.Context) {
	file, err := h.exportService.ExportHistoryXLSX(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	attachment(c, file.Filename, file.ContentType, file.Data)
}
