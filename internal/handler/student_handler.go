package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/readbridge/ufli-progress-api/internal/models"
	"github.com/readbridge/ufli-progress-api/internal/service"
	appErrors "github.com/readbridge/ufli-progress-api/pkg/errors"
	"github.com/readbridge/ufli-progress-api/pkg/response"
)

// StudentHandler exposes student roster endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List returns students at the caller's site matching the query filters.
func (h *StudentHandler) List(c *gin.Context) {
	var filter models.StudentFilter
	filter.SiteID = siteFromContext(c)
	filter.GroupID = c.Query("group_id")
	filter.Grade = c.Query("grade")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if active := c.Query("active"); active != "" {
		if active == "true" {
			v := true
			filter.Active = &v
		} else if active == "false" {
			v := false
			filter.Active = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	students, total, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get returns one student scoped to the caller's site.
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"), siteFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// CreateStudentRequest is the enrollment payload.
type CreateStudentRequest struct {
	FullName   string  `json:"full_name" binding:"required"`
	GradeLabel string  `json:"grade_label" binding:"required"`
	GroupID    *string `json:"group_id"`
}

// Create enrolls a new student at the caller's site.
func (h *StudentHandler) Create(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload"))
		return
	}

	student := &models.Student{
		SiteID:     siteFromContext(c),
		FullName:   req.FullName,
		GradeLabel: req.GradeLabel,
		GroupID:    req.GroupID,
	}
	if err := h.students.Create(c.Request.Context(), student); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// ListGroups returns the groups at the caller's site.
func (h *StudentHandler) ListGroups(c *gin.Context) {
	groups, err := h.students.ListGroups(c.Request.Context(), siteFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}
