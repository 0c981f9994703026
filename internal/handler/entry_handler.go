package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/readbridge/ufli-progress-api/internal/dto"
	"github.com/readbridge/ufli-progress-api/internal/models"
	"github.com/readbridge/ufli-progress-api/internal/service"
	appErrors "github.com/readbridge/ufli-progress-api/pkg/errors"
	"github.com/readbridge/ufli-progress-api/pkg/response"
)

// EntryHandler exposes lesson outcome ingestion endpoints.
type EntryHandler struct {
	entries *service.EntryService
}

// NewEntryHandler constructs EntryHandler.
func NewEntryHandler(entries *service.EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// Submit ingests one batch of lesson outcomes.
func (h *EntryHandler) Submit(c *gin.Context) {
	var req dto.SubmitEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entries payload"))
		return
	}

	result, err := h.entries.Submit(c.Request.Context(), siteFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List returns journal entries matching the query filters.
func (h *EntryHandler) List(c *gin.Context) {
	var filter models.LessonEntryFilter
	filter.SiteID = siteFromContext(c)
	filter.StudentID = c.Query("student_id")
	filter.GroupID = c.Query("group_id")
	filter.StaffID = c.Query("staff_id")
	filter.LessonID = c.Query("lesson_id")
	filter.EntryType = models.EntryType(c.Query("entry_type"))
	if from := c.Query("date_from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			filter.DateFrom = &parsed
		}
	}
	if to := c.Query("date_to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			filter.DateTo = &parsed
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	entries, total, err := h.entries.ListEntries(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, entries, pagination)
}
