package models

import "time"

// Student represents a learner enrolled at a site.
//
// CurrentLesson is a denormalized pointer to the highest lesson number with a
// passed current status. It is advanced incrementally during ingestion and
// reconciled wholesale on every progress recalculation; it is never mutated
// through any other path.
type Student struct {
	ID               string     `db:"id" json:"id"`
	SiteID           string     `db:"site_id" json:"site_id"`
	FullName         string     `db:"full_name" json:"full_name"`
	GradeLabel       string     `db:"grade_label" json:"grade_label"`
	GroupID          *string    `db:"group_id" json:"group_id,omitempty"`
	CurrentLesson    *int       `db:"current_lesson" json:"current_lesson,omitempty"`
	LastActivityDate *time.Time `db:"last_activity_date" json:"last_activity_date,omitempty"`
	UnenrollmentDate *time.Time `db:"unenrollment_date" json:"unenrollment_date,omitempty"`
	Active           bool       `db:"active" json:"active"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures the allowed search parameters for listing students.
type StudentFilter struct {
	SiteID    string
	GroupID   string
	Grade     string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
