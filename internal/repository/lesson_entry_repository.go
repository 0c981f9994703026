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

// LessonEntryRepository appends and lists journal entries.
type LessonEntryRepository struct {
	db *sqlx.DB
}

// NewLessonEntryRepository constructs a LessonEntryRepository.
func NewLessonEntryRepository(db *sqlx.DB) *LessonEntryRepository {
	return &LessonEntryRepository{db: db}
}

// Create appends one journal entry.
func (r *LessonEntryRepository) Create(ctx context.Context, entry *models.LessonEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO lesson_entries (id, site_id, student_id, group_id, staff_id, lesson_id, entry_date, status, entry_type, created_at)
        VALUES (:id, :site_id, :student_id, :group_id, :staff_id, :lesson_id, :entry_date, :status, :entry_type, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create lesson entry: %w", err)
	}
	return nil
}

// List returns journal entries matching the filter, newest first.
func (r *LessonEntryRepository) List(ctx context.Context, filter models.LessonEntryFilter) ([]models.LessonEntry, int, error) {
	base := "FROM lesson_entries"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", len(args)+1))
		args = append(args, filter.SiteID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.GroupID != "" {
		conditions = append(conditions, fmt.Sprintf("group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.StaffID != "" {
		conditions = append(conditions, fmt.Sprintf("staff_id = $%d", len(args)+1))
		args = append(args, filter.StaffID)
	}
	if filter.LessonID != "" {
		conditions = append(conditions, fmt.Sprintf("lesson_id = $%d", len(args)+1))
		args = append(args, filter.LessonID)
	}
	if filter.EntryType != "" {
		conditions = append(conditions, fmt.Sprintf("entry_type = $%d", len(args)+1))
		args = append(args, filter.EntryType)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("entry_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("entry_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, site_id, student_id, group_id, staff_id, lesson_id, entry_date, status, entry_type, created_at
        %s ORDER BY entry_date DESC LIMIT %d OFFSET %d`, base, size, offset)

	var entries []models.LessonEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lesson entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lesson entries: %w", err)
	}
	return entries, total, nil
}
