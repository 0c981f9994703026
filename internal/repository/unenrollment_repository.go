package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/readbridge/ufli-progress-api/internal/models"
)

// UnenrollmentRepository persists unenrollment logs and archive snapshots.
type UnenrollmentRepository struct {
	db *sqlx.DB
}

// NewUnenrollmentRepository constructs an UnenrollmentRepository.
func NewUnenrollmentRepository(db *sqlx.DB) *UnenrollmentRepository {
	return &UnenrollmentRepository{db: db}
}

// CreateWithArchive writes the log, its archive snapshot and the student
// deactivation in a single transaction. Either all three land or none do: a
// student must never end up inactive without an archive, or archived while
// still active.
func (r *UnenrollmentRepository) CreateWithArchive(ctx context.Context, log *models.UnenrollmentLog, archive *models.StudentArchive, unenrolledOn time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = now
	}
	log.UpdatedAt = now
	const logQuery = `INSERT INTO unenrollment_logs (id, student_id, reported_by_id, reported_date, lesson_at_unenroll, status, notes, created_at, updated_at)
        VALUES (:id, :student_id, :reported_by_id, :reported_date, :lesson_at_unenroll, :status, :notes, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, logQuery, log); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create unenrollment log: %w", err)
	}

	if archive.ID == "" {
		archive.ID = uuid.NewString()
	}
	archive.UnenrollmentLogID = log.ID
	if archive.ArchivedAt.IsZero() {
		archive.ArchivedAt = now
	}
	const archiveQuery = `INSERT INTO student_archives (id, student_id, unenrollment_log_id, initial_assessment_data, current_progress_data, grade_summary_data, archived_at)
        VALUES (:id, :student_id, :unenrollment_log_id, :initial_assessment_data, :current_progress_data, :grade_summary_data, :archived_at)`
	if _, err := tx.NamedExecContext(ctx, archiveQuery, archive); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create student archive: %w", err)
	}

	const deactivateQuery = `UPDATE students SET active = false, unenrollment_date = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, deactivateQuery, log.StudentID, unenrolledOn, now); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("deactivate student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit unenrollment: %w", err)
	}
	return nil
}

const unenrollmentLogColumns = `id, student_id, reported_by_id, reported_date, lesson_at_unenroll, status, notes, created_at, updated_at`

// FindLogByID fetches a single unenrollment log.
func (r *UnenrollmentRepository) FindLogByID(ctx context.Context, id string) (*models.UnenrollmentLog, error) {
	query := fmt.Sprintf("SELECT %s FROM unenrollment_logs WHERE id = $1", unenrollmentLogColumns)
	var log models.UnenrollmentLog
	if err := r.db.GetContext(ctx, &log, query, id); err != nil {
		return nil, err
	}
	return &log, nil
}

// UpdateLogStatus sets the status and notes for a log.
func (r *UnenrollmentRepository) UpdateLogStatus(ctx context.Context, id string, status models.UnenrollmentStatus, notes string) error {
	const query = `UPDATE unenrollment_logs SET status = $2, notes = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, notes, time.Now().UTC()); err != nil {
		return fmt.Errorf("update unenrollment log: %w", err)
	}
	return nil
}

// ListLogs returns logs ordered newest first, optionally restricted to the
// statuses provided.
func (r *UnenrollmentRepository) ListLogs(ctx context.Context, statuses ...models.UnenrollmentStatus) ([]models.UnenrollmentLog, error) {
	query := fmt.Sprintf("SELECT %s FROM unenrollment_logs", unenrollmentLogColumns)
	args := []interface{}{}
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args = append(args, status)
		}
		query += fmt.Sprintf(" WHERE status IN (%s)", strings.Join(placeholders, ","))
	}
	query += " ORDER BY reported_date DESC"
	var logs []models.UnenrollmentLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list unenrollment logs: %w", err)
	}
	return logs, nil
}

// PendingLogsByStudent returns a student's logs still in pending state.
func (r *UnenrollmentRepository) PendingLogsByStudent(ctx context.Context, studentID string) ([]models.UnenrollmentLog, error) {
	query := fmt.Sprintf("SELECT %s FROM unenrollment_logs WHERE student_id = $1 AND status = $2 ORDER BY reported_date DESC", unenrollmentLogColumns)
	var logs []models.UnenrollmentLog
	if err := r.db.SelectContext(ctx, &logs, query, studentID, models.UnenrollmentPending); err != nil {
		return nil, fmt.Errorf("list pending logs: %w", err)
	}
	return logs, nil
}

// ListArchivesByStudent returns a student's archive snapshots newest first.
func (r *UnenrollmentRepository) ListArchivesByStudent(ctx context.Context, studentID string) ([]models.StudentArchive, error) {
	const query = `SELECT id, student_id, unenrollment_log_id, initial_assessment_data, current_progress_data, grade_summary_data, archived_at
        FROM student_archives WHERE student_id = $1 ORDER BY archived_at DESC`
	var archives []models.StudentArchive
	if err := r.db.SelectContext(ctx, &archives, query, studentID); err != nil {
		return nil, fmt.Errorf("list student archives: %w", err)
	}
	return archives, nil
}

// CountArchivesByStudent returns how many snapshots exist for a student.
func (r *UnenrollmentRepository) CountArchivesByStudent(ctx context.Context, studentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_archives WHERE student_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID); err != nil {
		return 0, fmt.Errorf("count student archives: %w", err)
	}
	return count, nil
}
