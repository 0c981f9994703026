package models

import (
	"encoding/json"
	"time"
)

// ProgressRecordType distinguishes the cached aggregation variants kept per
// student.
type ProgressRecordType string

const (
	ProgressCurrent           ProgressRecordType = "current_progress"
	ProgressInitialAssessment ProgressRecordType = "initial_assessment"
	ProgressGradeSummary      ProgressRecordType = "grade_summary"
)

// ProgressRecord is the cached, fully recomputable aggregation of a student's
// ledger. It is overwritten wholesale on every recalculation and is never
// authoritative on its own.
type ProgressRecord struct {
	ID                string             `db:"id" json:"id"`
	StudentID         string             `db:"student_id" json:"student_id"`
	RecordType        ProgressRecordType `db:"record_type" json:"record_type"`
	FoundationalCount int                `db:"foundational_count" json:"foundational_count"`
	FoundationalPct   float64            `db:"foundational_pct" json:"foundational_pct"`
	MinGradeCount     int                `db:"min_grade_count" json:"min_grade_count"`
	MinGradePct       float64            `db:"min_grade_pct" json:"min_grade_pct"`
	FullGradeCount    int                `db:"full_grade_count" json:"full_grade_count"`
	FullGradePct      float64            `db:"full_grade_pct" json:"full_grade_pct"`
	BenchmarkCount    int                `db:"benchmark_count" json:"benchmark_count"`
	BenchmarkPct      float64            `db:"benchmark_pct" json:"benchmark_pct"`
	SkillSections     json.RawMessage    `db:"skill_sections" json:"skill_sections"`
	CalculatedAt      time.Time          `db:"calculated_at" json:"calculated_at"`
	CreatedAt         time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `db:"updated_at" json:"updated_at"`
}

// SectionPercentages decodes the cached section map ("section_1".."section_17").
func (p *ProgressRecord) SectionPercentages() (map[string]float64, error) {
	out := map[string]float64{}
	if len(p.SkillSections) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(p.SkillSections, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SectionProgress is the per-section breakdown served to API consumers.
type SectionProgress struct {
	SectionID      int     `json:"section_id"`
	SectionName    string  `json:"section_name"`
	LessonCount    int     `json:"lesson_count"`
	CompletedCount int     `json:"completed_count"`
	Percentage     float64 `json:"percentage"`
}
