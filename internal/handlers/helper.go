package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/exam-studio/internal/extract"
	"github.com/gin-gonic/gin"
)

// ParseStringIDParam returns the trimmed path parameter, answering 400 when it is empty.
func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// readUpload reads the multipart "file" field, bounded by the upload limit.
func readUpload(c *gin.Context) (string, []byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("missing file field: %w", err)
	}
	if header.Size > extract.MaxUploadSize {
		return "", nil, extract.ErrFileTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, extract.MaxUploadSize+1))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > extract.MaxUploadSize {
		return "", nil, extract.ErrFileTooLarge
	}
	return header.Filename, data, nil
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
