package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readbridge/ufli-progress-api/internal/curriculum"
	"github.com/readbridge/ufli-progress-api/internal/models"
	"github.com/readbridge/ufli-progress-api/pkg/response"
)

type lessonCatalog interface {
	ListAll(ctx context.Context) ([]models.Lesson, error)
}

// CurriculumHandler serves the fixed lesson and section catalog.
type CurriculumHandler struct {
	lessons lessonCatalog
}

// NewCurriculumHandler constructs CurriculumHandler.
func NewCurriculumHandler(lessons lessonCatalog) *CurriculumHandler {
	return &CurriculumHandler{lessons: lessons}
}

// Lessons returns all 128 lessons.
func (h *CurriculumHandler) Lessons(c *gin.Context) {
	lessons, err := h.lessons.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// Sections returns the 17 skill sections.
func (h *CurriculumHandler) Sections(c *gin.Context) {
	response.JSON(c, http.StatusOK, curriculum.Sections(), nil)
}
