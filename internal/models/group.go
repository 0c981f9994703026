package models

import "time"

// Group is a small instructional group of students at a site.
type Group struct {
	ID              string    `db:"id" json:"id"`
	SiteID          string    `db:"site_id" json:"site_id"`
	Name            string    `db:"name" json:"name"`
	IsTutoringGroup bool      `db:"is_tutoring_group" json:"is_tutoring_group"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
