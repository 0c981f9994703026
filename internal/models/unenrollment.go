package models

import (
	"encoding/json"
	"time"
)

// UnenrollmentStatus is the lifecycle of an unenrollment event.
type UnenrollmentStatus string

const (
	UnenrollmentPending   UnenrollmentStatus = "pending"
	UnenrollmentConfirmed UnenrollmentStatus = "confirmed"
	UnenrollmentResolved  UnenrollmentStatus = "resolved"
	UnenrollmentError     UnenrollmentStatus = "error"
)

// UnenrollmentLog records one reported unenrollment event.
type UnenrollmentLog struct {
	ID               string             `db:"id" json:"id"`
	StudentID        string             `db:"student_id" json:"student_id"`
	ReportedByID     *string            `db:"reported_by_id" json:"reported_by_id,omitempty"`
	ReportedDate     time.Time          `db:"reported_date" json:"reported_date"`
	LessonAtUnenroll *string            `db:"lesson_at_unenroll" json:"lesson_at_unenroll,omitempty"`
	Status           UnenrollmentStatus `db:"status" json:"status"`
	Notes            string             `db:"notes" json:"notes"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updated_at"`
}

// StudentArchive is the immutable snapshot taken when a student unenrolls.
// The ledger is captured split by assessment phase, together with the cached
// progress record contents at the time of the event.
type StudentArchive struct {
	ID                    string          `db:"id" json:"id"`
	StudentID             string          `db:"student_id" json:"student_id"`
	UnenrollmentLogID     string          `db:"unenrollment_log_id" json:"unenrollment_log_id"`
	InitialAssessmentData json.RawMessage `db:"initial_assessment_data" json:"initial_assessment_data,omitempty"`
	CurrentProgressData   json.RawMessage `db:"current_progress_data" json:"current_progress_data,omitempty"`
	GradeSummaryData      json.RawMessage `db:"grade_summary_data" json:"grade_summary_data,omitempty"`
	ArchivedAt            time.Time       `db:"archived_at" json:"archived_at"`
}

// ArchivedStatus is one ledger cell inside an archive snapshot.
type ArchivedStatus struct {
	Status LessonStatusCode `json:"status"`
	Date   time.Time        `json:"date"`
}

// ArchiveGradeSummary captures the derived state snapshotted alongside the
// ledger maps.
type ArchiveGradeSummary struct {
	ProgressRecords []ProgressRecord `json:"progress_records"`
	CurrentLesson   *int             `json:"current_lesson,omitempty"`
	GradeLabel      string           `json:"grade_label"`
	GroupID         *string          `json:"group_id,omitempty"`
}
