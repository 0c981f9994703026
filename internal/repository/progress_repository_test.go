package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readbridge/ufli-progress-api/internal/models"
)

func TestProgressUpsert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectExec("INSERT INTO progress_records").
		WillReturnResult(sqlmock.NewResult(0, 1))

	sections, err := json.Marshal(map[string]float64{"section_1": 50})
	require.NoError(t, err)

	record := &models.ProgressRecord{
		StudentID:       "s1",
		RecordType:      models.ProgressCurrent,
		FoundationalPct: 50,
		SkillSections:   sections,
	}
	require.NoError(t, repo.Upsert(context.Background(), record))

	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CalculatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressFindByStudent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "student_id", "record_type", "foundational_count", "foundational_pct",
		"min_grade_count", "min_grade_pct", "full_grade_count", "full_grade_pct",
		"benchmark_count", "benchmark_pct", "skill_sections", "calculated_at", "created_at", "updated_at"}).
		AddRow("p1", "s1", "current_progress", 17, 50.0, 17, 38.64, 6, 50.0, 17, 38.64, []byte(`{"section_1":50}`), now, now, now)
	mock.ExpectQuery("SELECT (.+) FROM progress_records WHERE student_id = \\$1 AND record_type = \\$2").
		WithArgs("s1", models.ProgressCurrent).
		WillReturnRows(rows)

	record, err := repo.FindByStudent(context.Background(), "s1", models.ProgressCurrent)
	require.NoError(t, err)

	assert.Equal(t, 17, record.FoundationalCount)
	sectionPcts, err := record.SectionPercentages()
	require.NoError(t, err)
	assert.InDelta(t, 50.0, sectionPcts["section_1"], 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}
