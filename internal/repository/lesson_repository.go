package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/readbridge/ufli-progress-api/internal/curriculum"
	"github.com/readbridge/ufli-progress-api/internal/models"
)

// LessonRepository manages the seeded lesson catalog rows.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// FindByID fetches a lesson by its row ID.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	const query = `SELECT id, number, name, section_id, is_review, is_foundational FROM lessons WHERE id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// FindByNumber fetches a lesson by its curriculum number.
func (r *LessonRepository) FindByNumber(ctx context.Context, number int) (*models.Lesson, error) {
	const query = `SELECT id, number, name, section_id, is_review, is_foundational FROM lessons WHERE number = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, number); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListAll returns the full catalog ordered by lesson number.
func (r *LessonRepository) ListAll(ctx context.Context) ([]models.Lesson, error) {
	const query = `SELECT id, number, name, section_id, is_review, is_foundational FROM lessons ORDER BY number`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// Seed inserts the 128 catalog lessons, leaving existing rows untouched.
func (r *LessonRepository) Seed(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `INSERT INTO lessons (id, number, name, section_id, is_review, is_foundational)
        VALUES (:id, :number, :name, :section_id, :is_review, :is_foundational)
        ON CONFLICT (number) DO NOTHING`
	for number := 1; number <= curriculum.TotalLessons; number++ {
		lesson := models.Lesson{
			ID:             uuid.NewString(),
			Number:         number,
			Name:           curriculum.LessonName(number),
			SectionID:      primarySection(number),
			IsReview:       curriculum.IsReview(number),
			IsFoundational: curriculum.IsFoundational(number),
		}
		if _, err := tx.NamedExecContext(ctx, query, lesson); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("seed lesson %d: %w", number, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lesson seed: %w", err)
	}
	return nil
}

// primarySection returns the first catalog section containing the lesson.
// A few lessons appear in more than one section (the blends); the first
// occurrence is the lesson's home section.
func primarySection(number int) int {
	for _, section := range curriculum.Sections() {
		for _, n := range section.Lessons {
			if n == number {
				return section.ID
			}
		}
	}
	return 0
}
