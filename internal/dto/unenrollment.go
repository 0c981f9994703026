package dto

import (
	"time"

	"github.com/readbridge/ufli-progress-api/internal/models"
)

// ResolveUnenrollmentRequest carries the staff note explaining a resolution.
type ResolveUnenrollmentRequest struct {
	Note string `json:"note" binding:"required"`
}

// UnenrollmentLogView is one log joined with its student's display fields.
type UnenrollmentLogView struct {
	Log         models.UnenrollmentLog `json:"log"`
	StudentName string                 `json:"student_name"`
	GradeLabel  string                 `json:"grade_label"`
}

// UnenrolledStudent is one inactive student in the unenrolled listing.
type UnenrolledStudent struct {
	StudentID        string     `json:"student_id"`
	FullName         string     `json:"full_name"`
	GradeLabel       string     `json:"grade_label"`
	UnenrollmentDate *time.Time `json:"unenrollment_date,omitempty"`
	ArchiveCount     int        `json:"archive_count"`
}
