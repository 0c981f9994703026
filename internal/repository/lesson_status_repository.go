package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/readbridge/ufli-progress-api/internal/models"
)

// LessonStatusRepository is the ledger store: one outcome per
// (student, lesson, assessment phase).
type LessonStatusRepository struct {
	db *sqlx.DB
}

// NewLessonStatusRepository constructs a LessonStatusRepository.
func NewLessonStatusRepository(db *sqlx.DB) *LessonStatusRepository {
	return &LessonStatusRepository{db: db}
}

// Upsert writes the ledger row for its key, overwriting status, date, group
// and staff on conflict. Returns true when a new row was created.
func (r *LessonStatusRepository) Upsert(ctx context.Context, record *models.LessonStatusRecord) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO lesson_statuses (id, student_id, lesson_id, group_id, staff_id, status, completed_date, is_initial_assessment, created_at, updated_at)
        VALUES (:id, :student_id, :lesson_id, :group_id, :staff_id, :status, :completed_date, :is_initial_assessment, :created_at, :updated_at)
        ON CONFLICT (student_id, lesson_id, is_initial_assessment)
        DO UPDATE SET status = EXCLUDED.status, completed_date = EXCLUDED.completed_date,
            group_id = EXCLUDED.group_id, staff_id = EXCLUDED.staff_id, updated_at = EXCLUDED.updated_at
        RETURNING (xmax = 0) AS inserted`
	rows, err := r.db.NamedQueryContext(ctx, query, record)
	if err != nil {
		return false, fmt.Errorf("upsert lesson status: %w", err)
	}
	defer rows.Close()
	inserted := false
	if rows.Next() {
		if err := rows.Scan(&inserted); err != nil {
			return false, fmt.Errorf("scan upsert result: %w", err)
		}
	}
	return inserted, nil
}

// StatusMapByStudent reduces one assessment phase of a student's ledger to a
// lesson-number keyed map of outcome codes.
func (r *LessonStatusRepository) StatusMapByStudent(ctx context.Context, studentID string, isInitial bool) (models.StatusMap, error) {
	const query = `SELECT l.number, ls.status FROM lesson_statuses ls
        JOIN lessons l ON l.id = ls.lesson_id
        WHERE ls.student_id = $1 AND ls.is_initial_assessment = $2`
	rows, err := r.db.QueryxContext(ctx, query, studentID, isInitial)
	if err != nil {
		return nil, fmt.Errorf("load status map: %w", err)
	}
	defer rows.Close()
	statuses := models.StatusMap{}
	for rows.Next() {
		var number int
		var status models.LessonStatusCode
		if err := rows.Scan(&number, &status); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses[number] = status
	}
	return statuses, rows.Err()
}

// ListByStudent returns the full ledger rows for one assessment phase.
func (r *LessonStatusRepository) ListByStudent(ctx context.Context, studentID string, isInitial bool) ([]models.LessonStatusRecord, error) {
	const query = `SELECT ls.id, ls.student_id, ls.lesson_id, l.number AS lesson_number, ls.group_id, ls.staff_id,
            ls.status, ls.completed_date, ls.is_initial_assessment, ls.created_at, ls.updated_at
        FROM lesson_statuses ls
        JOIN lessons l ON l.id = ls.lesson_id
        WHERE ls.student_id = $1 AND ls.is_initial_assessment = $2
        ORDER BY l.number`
	var records []models.LessonStatusRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID, isInitial); err != nil {
		return nil, fmt.Errorf("list lesson statuses: %w", err)
	}
	return records, nil
}
