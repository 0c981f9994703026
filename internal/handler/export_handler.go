package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/readbridge/ufli-progress-api/internal/service"
	"github.com/readbridge/ufli-progress-api/pkg/response"
)

// ExportHandler exposes report download endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// StudentReport streams a student's progress report as PDF.
func (h *ExportHandler) StudentReport(c *gin.Context) {
	file, err := h.exports.StudentReportPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(200, file.ContentType, file.Data)
}

// GroupReport streams a group roster with headline metrics as CSV.
func (h *ExportHandler) GroupReport(c *gin.Context) {
	file, err := h.exports.GroupProgressCSV(c.Request.Context(), siteFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(200, file.ContentType, file.Data)
}
