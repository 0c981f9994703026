package models

import "time"

// LessonStatusCode is the single-character outcome recorded for a lesson.
type LessonStatusCode string

// Outcome codes accepted at the boundary.
const (
	StatusPassed     LessonStatusCode = "Y"
	StatusFailed     LessonStatusCode = "N"
	StatusAbsent     LessonStatusCode = "A"
	StatusUnenrolled LessonStatusCode = "U"
)

// Valid reports whether the code is one of Y, N, A, U.
func (c LessonStatusCode) Valid() bool {
	switch c {
	case StatusPassed, StatusFailed, StatusAbsent, StatusUnenrolled:
		return true
	}
	return false
}

// LessonStatusRecord is the ledger row: one outcome per
// (student, lesson, assessment phase). Re-submissions overwrite in place;
// the ledger keeps no history.
type LessonStatusRecord struct {
	ID                  string           `db:"id" json:"id"`
	StudentID           string           `db:"student_id" json:"student_id"`
	LessonID            string           `db:"lesson_id" json:"lesson_id"`
	LessonNumber        int              `db:"lesson_number" json:"lesson_number"`
	GroupID             *string          `db:"group_id" json:"group_id,omitempty"`
	StaffID             *string          `db:"staff_id" json:"staff_id,omitempty"`
	Status              LessonStatusCode `db:"status" json:"status"`
	CompletedDate       time.Time        `db:"completed_date" json:"completed_date"`
	IsInitialAssessment bool             `db:"is_initial_assessment" json:"is_initial_assessment"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time        `db:"updated_at" json:"updated_at"`
}

// StatusMap maps lesson number to outcome code for one assessment phase of a
// student's ledger.
type StatusMap map[int]LessonStatusCode
