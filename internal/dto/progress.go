package dto

import (
	"time"

	"github.com/readbridge/ufli-progress-api/internal/models"
)

// StudentProgress is the assembled progress view for one student.
type StudentProgress struct {
	StudentID         string                 `json:"student_id"`
	FullName          string                 `json:"full_name"`
	GradeLabel        string                 `json:"grade_label"`
	CurrentLesson     *int                   `json:"current_lesson,omitempty"`
	CurrentLessonName string                 `json:"current_lesson_name,omitempty"`
	LastActivityDate  *time.Time             `json:"last_activity_date,omitempty"`
	Active            bool                   `json:"active"`
	Current           *models.ProgressRecord `json:"current_progress,omitempty"`
	Initial           *models.ProgressRecord `json:"initial_assessment,omitempty"`
}

// SectionLessonStatus is one lesson row inside a section detail view.
type SectionLessonStatus struct {
	LessonNumber int     `json:"lesson_number"`
	LessonName   string  `json:"lesson_name"`
	IsReview     bool    `json:"is_review"`
	Status       *string `json:"status,omitempty"`
}

// SectionDetail is the lesson-level expansion of one skill section.
type SectionDetail struct {
	SectionID   int                   `json:"section_id"`
	SectionName string                `json:"section_name"`
	Percentage  float64               `json:"percentage"`
	Lessons     []SectionLessonStatus `json:"lessons"`
}

// RecalcSummary reports the outcome of a bulk recalculation pass.
type RecalcSummary struct {
	Processed int            `json:"processed"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Errors    []StudentError `json:"errors,omitempty"`
}
