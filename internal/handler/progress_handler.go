package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/readbridge/ufli-progress-api/internal/service"
	appErrors "github.com/readbridge/ufli-progress-api/pkg/errors"
	"github.com/readbridge/ufli-progress-api/pkg/response"
)

// ProgressHandler exposes progress read and recalculation endpoints.
type ProgressHandler struct {
	progress *service.ProgressService
}

// NewProgressHandler constructs ProgressHandler.
func NewProgressHandler(progress *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// Get returns the assembled progress view for a student.
func (h *ProgressHandler) Get(c *gin.Context) {
	view, err := h.progress.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Breakdown returns the per-section summary for a student.
func (h *ProgressHandler) Breakdown(c *gin.Context) {
	sections, err := h.progress.Breakdown(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// SectionDetail expands one skill section into lesson-level statuses.
func (h *ProgressHandler) SectionDetail(c *gin.Context) {
	sectionID, err := strconv.Atoi(c.Param("sectionId"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "section id must be an integer"))
		return
	}

	detail, err := h.progress.SectionDetail(c.Request.Context(), c.Param("id"), sectionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Recalculate rebuilds the cached progress for one student.
func (h *ProgressHandler) Recalculate(c *gin.Context) {
	record, err := h.progress.RecalculateStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// RecalculateAll rebuilds progress for every active student at the caller's
// site.
func (h *ProgressHandler) RecalculateAll(c *gin.Context) {
	summary, err := h.progress.RecalculateAll(c.Request.Context(), siteFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
