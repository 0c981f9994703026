package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readbridge/ufli-progress-api/internal/models"
)

func TestCreateWithArchiveIsTransactional(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUnenrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO unenrollment_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO student_archives").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET active = false, unenrollment_date = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("s1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	log := &models.UnenrollmentLog{StudentID: "s1", Status: models.UnenrollmentPending, ReportedDate: time.Now().UTC()}
	archive := &models.StudentArchive{StudentID: "s1"}
	require.NoError(t, repo.CreateWithArchive(context.Background(), log, archive, time.Now().UTC()))

	assert.NotEmpty(t, log.ID)
	assert.Equal(t, log.ID, archive.UnenrollmentLogID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithArchiveRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUnenrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO unenrollment_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO student_archives").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	log := &models.UnenrollmentLog{StudentID: "s1", Status: models.UnenrollmentPending, ReportedDate: time.Now().UTC()}
	err := repo.CreateWithArchive(context.Background(), log, &models.StudentArchive{StudentID: "s1"}, time.Now().UTC())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLogStatus(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUnenrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE unenrollment_logs SET status = $2, notes = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("log-1", models.UnenrollmentResolved, "notes\nResolution: mistake", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateLogStatus(context.Background(), "log-1", models.UnenrollmentResolved, "notes\nResolution: mistake")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLogsFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUnenrollmentRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "student_id", "reported_by_id", "reported_date", "lesson_at_unenroll", "status", "notes", "created_at", "updated_at"}).
		AddRow("log-1", "s1", nil, now, nil, "pending", "", now, now)
	mock.ExpectQuery("SELECT (.+) FROM unenrollment_logs WHERE status IN").
		WithArgs(models.UnenrollmentPending).
		WillReturnRows(rows)

	logs, err := repo.ListLogs(context.Background(), models.UnenrollmentPending)
	require.NoError(t, err)

	require.Len(t, logs, 1)
	assert.Equal(t, models.UnenrollmentPending, logs[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
