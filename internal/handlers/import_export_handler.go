package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/SAP-F-2025/exam-studio/internal/extract"
	"github.com/SAP-F-2025/exam-studio/internal/services"
	"github.com/SAP-F-2025/exam-studio/internal/utils"
	"github.com/gin-gonic/gin"
)

type ImportExportHandler struct {
	BaseHandler
	importExportService services.ImportExportService
}

func NewImportExportHandler(importExportService services.ImportExportService, logger utils.Logger) *ImportExportHandler {
	return &ImportExportHandler{
		BaseHandler:         NewBaseHandler(logger),
		importExportService: importExportService,
	}
}

// ExportBank returns the JSON export document of a bank
// @Summary Export bank as JSON
// @Tags import-export
// @Produce json
// @Param id path string true "Bank ID"
// @Success 200 {object} models.BankExport
// @Failure 404 {object} ErrorResponse
// @Router /banks/{id}/export [get]
func (h *ImportExportHandler) ExportBank(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	export, err := h.importExportService.ExportBank(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-export.json"`, id))
	c.JSON(http.StatusOK, export)
}

// ImportBank creates a new bank from an export document
// @Summary Import bank from JSON
// @Tags import-export
// @Accept json
// @Produce json
// @Param document body models.BankExport true "Export document"
// @Success 201 {object} services.ImportBankResponse
// @Failure 400 {object} ErrorResponse
// @Router /banks/import [post]
func (h *ImportExportHandler) ImportBank(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, extract.MaxUploadSize+1))
	if err != nil {
		h.BadRequest(c, err)
		return
	}
	if len(data) > extract.MaxUploadSize {
		h.RespondWithError(c, http.StatusRequestEntityTooLarge, extract.ErrFileTooLarge.Error(), extract.ErrFileTooLarge)
		return
	}

	resp, err := h.importExportService.ImportBank(c.Request.Context(), data)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Router /banks/{id}/export.xlsx [get]
func (h *ImportExportHandler) ExportBankXLSX(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	file, err := h.importExportService.ExportBankXLSX(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	attachment(c, file.Filename, file.ContentType, file.Data)
}

// ImportQuestionsXLSX appends spreadsheet rows to a bank
// @Summary Import questions from Excel
// @Tags import-export
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Bank ID"
// @Param file formData file true "xlsx workbook"
// @Success 200 {object} models.ImportSummary
// @Failure 400 {object} ErrorResponse
// @Router /banks/{id}/import.xlsx [post]
func (h *ImportExportHandler) ImportQuestionsXLSX(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	filename, data, err := readUpload(c)
	if err != nil {
		h.uploadError(c, err)
		return
	}

	h.LogRequest(c, "Importing questions", "bank_id", id, "filename", filename, "size", len(data))

	summary, err := h.importExportService.ImportQuestionsXLSX(c.Request.Context(), id, data)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *BaseHandler) uploadError(c *gin.Context, err error) {
	if errors.Is(err, extract.ErrFileTooLarge) {
		h.RespondWithError(c, http.StatusRequestEntityTooLarge, err.Error(), err)
		return
	}
	h.BadRequest(c, err)
}
