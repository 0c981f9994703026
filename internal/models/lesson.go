package models

// Lesson is one of the 128 numbered curriculum steps, seeded once from the
// curriculum catalog and immutable afterwards.
type Lesson struct {
	ID             string `db:"id" json:"id"`
	Number         int    `db:"number" json:"number"`
	Name           string `db:"name" json:"name"`
	SectionID      int    `db:"section_id" json:"section_id"`
	IsReview       bool   `db:"is_review" json:"is_review"`
	IsFoundational bool   `db:"is_foundational" json:"is_foundational"`
}
