package models

import "time"

// EntryType classifies how a lesson outcome was delivered.
type EntryType string

const (
	EntrySmallGroup EntryType = "small_group"
	EntryTutoring   EntryType = "tutoring"
)

// LessonEntry is the journal row appended for every recorded outcome. Unlike
// the ledger it accumulates: it is the audit trail of submissions, not the
// source of truth for metrics.
type LessonEntry struct {
	ID        string           `db:"id" json:"id"`
	SiteID    string           `db:"site_id" json:"site_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	GroupID   string           `db:"group_id" json:"group_id"`
	StaffID   string           `db:"staff_id" json:"staff_id"`
	LessonID  string           `db:"lesson_id" json:"lesson_id"`
	EntryDate time.Time        `db:"entry_date" json:"entry_date"`
	Status    LessonStatusCode `db:"status" json:"status"`
	EntryType EntryType        `db:"entry_type" json:"entry_type"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// LessonEntryFilter provides filters for listing journal entries.
type LessonEntryFilter struct {
	SiteID    string
	StudentID string
	GroupID   string
	StaffID   string
	LessonID  string
	EntryType EntryType
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}
