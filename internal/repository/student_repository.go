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

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, site_id, full_name, grade_label, group_id, current_lesson, last_activity_date, unenrollment_date, active, created_at, updated_at`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", len(args)+1))
		args = append(args, filter.SiteID)
	}
	if filter.GroupID != "" {
		conditions = append(conditions, fmt.Sprintf("group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.Grade != "" {
		conditions = append(conditions, fmt.Sprintf("grade_label = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(full_name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":      "full_name",
		"current_lesson": "current_lesson",
		"created_at":     "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListActiveBySite returns every active student at a site, unpaginated. Used
// by bulk recalculation and exports.
func (r *StudentRepository) ListActiveBySite(ctx context.Context, siteID string) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE site_id = $1 AND active = true ORDER BY full_name ASC", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, siteID); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// ListInactiveBySite returns every unenrolled student at a site.
func (r *StudentRepository) ListInactiveBySite(ctx context.Context, siteID string) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE site_id = $1 AND active = false ORDER BY unenrollment_date DESC NULLS LAST", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, siteID); err != nil {
		return nil, fmt.Errorf("list inactive students: %w", err)
	}
	return students, nil
}

// ListByGroup returns the active students assigned to a group.
func (r *StudentRepository) ListByGroup(ctx context.Context, groupID string) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE group_id = $1 AND active = true ORDER BY full_name ASC", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, groupID); err != nil {
		return nil, fmt.Errorf("list students by group: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByIDForSite fetches a student by ID scoped to a site.
func (r *StudentRepository) FindByIDForSite(ctx context.Context, id, siteID string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1 AND site_id = $2", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id, siteID); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, site_id, full_name, grade_label, group_id, current_lesson, last_activity_date, unenrollment_date, active, created_at, updated_at)
        VALUES (:id, :site_id, :full_name, :grade_label, :group_id, :current_lesson, :last_activity_date, :unenrollment_date, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// AdvanceCurrentLesson moves the current-lesson pointer forward. The update
// is conditional so the pointer can only ever increase.
func (r *StudentRepository) AdvanceCurrentLesson(ctx context.Context, id string, lessonNumber int) error {
	const query = `UPDATE students SET current_lesson = $2, updated_at = $3
        WHERE id = $1 AND (current_lesson IS NULL OR current_lesson < $2)`
	if _, err := r.db.ExecContext(ctx, query, id, lessonNumber, time.Now().UTC()); err != nil {
		return fmt.Errorf("advance current lesson: %w", err)
	}
	return nil
}

// SetCurrentLesson overwrites the pointer during recalculation reconciliation.
func (r *StudentRepository) SetCurrentLesson(ctx context.Context, id string, lessonNumber *int) error {
	const query = `UPDATE students SET current_lesson = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, lessonNumber, time.Now().UTC()); err != nil {
		return fmt.Errorf("set current lesson: %w", err)
	}
	return nil
}

// TouchActivity updates the student's last-activity date.
func (r *StudentRepository) TouchActivity(ctx context.Context, id string, activityDate time.Time) error {
	const query = `UPDATE students SET last_activity_date = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, activityDate, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch student activity: %w", err)
	}
	return nil
}

// Reactivate marks a student active again, clearing the unenrollment date.
func (r *StudentRepository) Reactivate(ctx context.Context, id string) error {
	const query = `UPDATE students SET active = true, unenrollment_date = NULL, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("reactivate student: %w", err)
	}
	return nil
}
