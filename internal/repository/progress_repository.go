package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/readbridge/ufli-progress-api/internal/models"
)

// ProgressRepository persists the cached progress records.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository constructs a ProgressRepository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Upsert replaces the cached record for (student, record type) in one
// statement so all metrics and the section map change atomically.
func (r *ProgressRepository) Upsert(ctx context.Context, record *models.ProgressRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.CalculatedAt.IsZero() {
		record.CalculatedAt = now
	}
	const query = `INSERT INTO progress_records (id, student_id, record_type,
            foundational_count, foundational_pct, min_grade_count, min_grade_pct,
            full_grade_count, full_grade_pct, benchmark_count, benchmark_pct,
            skill_sections, calculated_at, created_at, updated_at)
        VALUES (:id, :student_id, :record_type,
            :foundational_count, :foundational_pct, :min_grade_count, :min_grade_pct,
            :full_grade_count, :full_grade_pct, :benchmark_count, :benchmark_pct,
            :skill_sections, :calculated_at, :created_at, :updated_at)
        ON CONFLICT (student_id, record_type)
        DO UPDATE SET foundational_count = EXCLUDED.foundational_count, foundational_pct = EXCLUDED.foundational_pct,
            min_grade_count = EXCLUDED.min_grade_count, min_grade_pct = EXCLUDED.min_grade_pct,
            full_grade_count = EXCLUDED.full_grade_count, full_grade_pct = EXCLUDED.full_grade_pct,
            benchmark_count = EXCLUDED.benchmark_count, benchmark_pct = EXCLUDED.benchmark_pct,
            skill_sections = EXCLUDED.skill_sections, calculated_at = EXCLUDED.calculated_at,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert progress record: %w", err)
	}
	return nil
}

const progressColumns = `id, student_id, record_type, foundational_count, foundational_pct,
        min_grade_count, min_grade_pct, full_grade_count, full_grade_pct,
        benchmark_count, benchmark_pct, skill_sections, calculated_at, created_at, updated_at`

// FindByStudent fetches the cached record of one type for a student.
func (r *ProgressRepository) FindByStudent(ctx context.Context, studentID string, recordType models.ProgressRecordType) (*models.ProgressRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM progress_records WHERE student_id = $1 AND record_type = $2`, progressColumns)
	var record models.ProgressRecord
	if err := r.db.GetContext(ctx, &record, query, studentID, recordType); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByStudent returns every cached record variant for a student.
func (r *ProgressRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ProgressRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM progress_records WHERE student_id = $1 ORDER BY record_type`, progressColumns)
	var records []models.ProgressRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list progress records: %w", err)
	}
	return records, nil
}
