package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readbridge/ufli-progress-api/internal/dto"
	"github.com/readbridge/ufli-progress-api/internal/service"
	appErrors "github.com/readbridge/ufli-progress-api/pkg/errors"
	"github.com/readbridge/ufli-progress-api/pkg/response"
)

// UnenrollmentHandler exposes the unenrollment lifecycle endpoints.
type UnenrollmentHandler struct {
	unenrollments *service.UnenrollmentService
}

// NewUnenrollmentHandler constructs UnenrollmentHandler.
func NewUnenrollmentHandler(unenrollments *service.UnenrollmentService) *UnenrollmentHandler {
	return &UnenrollmentHandler{unenrollments: unenrollments}
}

// ListPending returns logs awaiting staff review.
func (h *UnenrollmentHandler) ListPending(c *gin.Context) {
	logs, err := h.unenrollments.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// ListUnenrolled returns inactive students at the caller's site.
func (h *UnenrollmentHandler) ListUnenrolled(c *gin.Context) {
	students, err := h.unenrollments.ListUnenrolled(c.Request.Context(), siteFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Confirm moves a pending log to confirmed.
func (h *UnenrollmentHandler) Confirm(c *gin.Context) {
	log, err := h.unenrollments.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// Resolve closes a log as mistaken and reactivates the student.
func (h *UnenrollmentHandler) Resolve(c *gin.Context) {
	var req dto.ResolveUnenrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resolve payload"))
		return
	}

	log, err := h.unenrollments.Resolve(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// Restore reactivates a student and auto-resolves their pending logs.
func (h *UnenrollmentHandler) Restore(c *gin.Context) {
	student, err := h.unenrollments.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Archives returns a student's archive snapshots.
func (h *UnenrollmentHandler) Archives(c *gin.Context) {
	archives, err := h.unenrollments.ArchivesForStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, archives, nil)
}
