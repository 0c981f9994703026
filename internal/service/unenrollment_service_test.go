package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readbridge/ufli-progress-api/internal/models"
	appErrors "github.com/readbridge/ufli-progress-api/pkg/errors"
)

type mockUnenrollStudents struct {
	students    map[string]*models.Student
	reactivated []string
}

func (m *mockUnenrollStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUnenrollStudents) Reactivate(ctx context.Context, id string) error {
	m.reactivated = append(m.reactivated, id)
	if s, ok := m.students[id]; ok {
		s.Active = true
		s.UnenrollmentDate = nil
	}
	return nil
}

func (m *mockUnenrollStudents) ListInactiveBySite(ctx context.Context, siteID string) ([]models.Student, error) {
	var out []models.Student
	for _, s := range m.students {
		if s.SiteID == siteID && !s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

type mockUnenrollLedger struct {
	current []models.LessonStatusRecord
	initial []models.LessonStatusRecord
}

func (m *mockUnenrollLedger) ListByStudent(ctx context.Context, studentID string, isInitial bool) ([]models.LessonStatusRecord, error) {
	if isInitial {
		return m.initial, nil
	}
	return m.current, nil
}

type mockUnenrollProgress struct {
	records []models.ProgressRecord
}

func (m *mockUnenrollProgress) ListByStudent(ctx context.Context, studentID string) ([]models.ProgressRecord, error) {
	return m.records, nil
}

type mockUnenrollStore struct {
	logs        map[string]*models.UnenrollmentLog
	archives    []models.StudentArchive
	deactivated []string
	createErr   error
}

func (m *mockUnenrollStore) CreateWithArchive(ctx context.Context, log *models.UnenrollmentLog, archive *models.StudentArchive, unenrolledOn time.Time) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.logs == nil {
		m.logs = make(map[string]*models.UnenrollmentLog)
	}
	if log.ID == "" {
		log.ID = "log-" + log.StudentID
	}
	archive.UnenrollmentLogID = log.ID
	stored := *log
	m.logs[log.ID] = &stored
	m.archives = append(m.archives, *archive)
	m.deactivated = append(m.deactivated, log.StudentID)
	return nil
}

func (m *mockUnenrollStore) FindLogByID(ctx context.Context, id string) (*models.UnenrollmentLog, error) {
	if log, ok := m.logs[id]; ok {
		copied := *log
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUnenrollStore) UpdateLogStatus(ctx context.Context, id string, status models.UnenrollmentStatus, notes string) error {
	if log, ok := m.logs[id]; ok {
		log.Status = status
		log.Notes = notes
	}
	return nil
}

func (m *mockUnenrollStore) ListLogs(ctx context.Context, statuses ...models.UnenrollmentStatus) ([]models.UnenrollmentLog, error) {
	var out []models.UnenrollmentLog
	for _, log := range m.logs {
		if len(statuses) == 0 {
			out = append(out, *log)
			continue
		}
		for _, status := range statuses {
			if log.Status == status {
				out = append(out, *log)
				break
			}
		}
	}
	return out, nil
}

func (m *mockUnenrollStore) PendingLogsByStudent(ctx context.Context, studentID string) ([]models.UnenrollmentLog, error) {
	var out []models.UnenrollmentLog
	for _, log := range m.logs {
		if log.StudentID == studentID && log.Status == models.UnenrollmentPending {
			out = append(out, *log)
		}
	}
	return out, nil
}

func (m *mockUnenrollStore) ListArchivesByStudent(ctx context.Context, studentID string) ([]models.StudentArchive, error) {
	var out []models.StudentArchive
	for _, a := range m.archives {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockUnenrollStore) CountArchivesByStudent(ctx context.Context, studentID string) (int, error) {
	archives, _ := m.ListArchivesByStudent(ctx, studentID)
	return len(archives), nil
}

type unenrollFixture struct {
	students *mockUnenrollStudents
	ledger   *mockUnenrollLedger
	progress *mockUnenrollProgress
	store    *mockUnenrollStore
	metrics  *MetricsService
	svc      *UnenrollmentService
}

func newUnenrollFixture() *unenrollFixture {
	lesson := 57
	f := &unenrollFixture{
		students: &mockUnenrollStudents{students: map[string]*models.Student{
			"s1": {ID: "s1", SiteID: "site-1", FullName: "Ada", GradeLabel: "G2", CurrentLesson: &lesson, Active: true},
		}},
		ledger: &mockUnenrollLedger{
			current: []models.LessonStatusRecord{
				{StudentID: "s1", LessonNumber: 56, Status: models.StatusPassed, CompletedDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
				{StudentID: "s1", LessonNumber: 57, Status: models.StatusPassed, CompletedDate: time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)},
			},
			initial: []models.LessonStatusRecord{
				{StudentID: "s1", LessonNumber: 1, Status: models.StatusPassed, IsInitialAssessment: true, CompletedDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)},
			},
		},
		progress: &mockUnenrollProgress{records: []models.ProgressRecord{
			{StudentID: "s1", RecordType: models.ProgressCurrent, FoundationalCount: 34},
		}},
		store:   &mockUnenrollStore{},
		metrics: NewMetricsService(),
	}
	f.svc = NewUnenrollmentService(f.students, f.ledger, f.progress, f.store, nil, f.metrics, nil)
	return f
}

func TestUnenrollArchivesAndDeactivates(t *testing.T) {
	f := newUnenrollFixture()
	reporter := "t1"
	reported := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	log, err := f.svc.Unenroll(context.Background(), "s1", &reporter, reported)
	require.NoError(t, err)

	assert.Equal(t, models.UnenrollmentPending, log.Status)
	require.NotNil(t, log.LessonAtUnenroll)
	assert.Equal(t, "Lesson 57", *log.LessonAtUnenroll)
	assert.Contains(t, log.Notes, "2026-03-02")

	// Exactly one log and one archive, and the student was deactivated in
	// the same operation.
	require.Len(t, f.store.archives, 1)
	assert.Equal(t, []string{"s1"}, f.store.deactivated)

	archive := f.store.archives[0]
	assert.Equal(t, log.ID, archive.UnenrollmentLogID)

	var current map[string]models.ArchivedStatus
	require.NoError(t, json.Unmarshal(archive.CurrentProgressData, &current))
	assert.Len(t, current, 2)
	assert.Equal(t, models.StatusPassed, current["57"].Status)

	var initial map[string]models.ArchivedStatus
	require.NoError(t, json.Unmarshal(archive.InitialAssessmentData, &initial))
	assert.Len(t, initial, 1)

	var summary models.ArchiveGradeSummary
	require.NoError(t, json.Unmarshal(archive.GradeSummaryData, &summary))
	assert.Equal(t, "G2", summary.GradeLabel)
	require.NotNil(t, summary.CurrentLesson)
	assert.Equal(t, 57, *summary.CurrentLesson)
	require.Len(t, summary.ProgressRecords, 1)
	assert.Equal(t, 34, summary.ProgressRecords[0].FoundationalCount)
}

func TestUnenrollCountsProcessedEvents(t *testing.T) {
	f := newUnenrollFixture()

	_, err := f.svc.Unenroll(context.Background(), "s1", nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.unenrollments))

	// A rejected report is not a processed event.
	f.students.students["s1"].Active = false
	_, err = f.svc.Unenroll(context.Background(), "s1", nil, time.Now())
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.unenrollments))
}

func TestUnenrollAlreadyInactive(t *testing.T) {
	f := newUnenrollFixture()
	f.students.students["s1"].Active = false

	_, err := f.svc.Unenroll(context.Background(), "s1", nil, time.Now())

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, f.store.archives)
}

func TestUnenrollUnknownStudent(t *testing.T) {
	f := newUnenrollFixture()
	_, err := f.svc.Unenroll(context.Background(), "ghost", nil, time.Now())

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUnenrollArchiveFailure(t *testing.T) {
	f := newUnenrollFixture()
	f.store.createErr = assert.AnError

	_, err := f.svc.Unenroll(context.Background(), "s1", nil, time.Now())

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrArchiveFailed.Code, appErr.Code)
}

func TestConfirmPendingLog(t *testing.T) {
	f := newUnenrollFixture()
	log, err := f.svc.Unenroll(context.Background(), "s1", nil, time.Now())
	require.NoError(t, err)

	confirmed, err := f.svc.Confirm(context.Background(), log.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnenrollmentConfirmed, confirmed.Status)

	// Confirming twice is rejected.
	_, err = f.svc.Confirm(context.Background(), log.ID)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestResolveReactivatesStudent(t *testing.T) {
	f := newUnenrollFixture()
	log, err := f.svc.Unenroll(context.Background(), "s1", nil, time.Now())
	require.NoError(t, err)
	originalNotes := log.Notes

	resolved, err := f.svc.Resolve(context.Background(), log.ID, "entered by mistake")
	require.NoError(t, err)

	assert.Equal(t, models.UnenrollmentResolved, resolved.Status)
	assert.Contains(t, resolved.Notes, originalNotes)
	assert.Contains(t, resolved.Notes, "Resolution: entered by mistake")
	assert.Equal(t, []string{"s1"}, f.students.reactivated)

	// The archive stays: resolution never deletes the snapshot.
	assert.Len(t, f.store.archives, 1)

	_, err = f.svc.Resolve(context.Background(), log.ID, "again")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRestoreAutoResolvesPendingLogs(t *testing.T) {
	f := newUnenrollFixture()
	log, err := f.svc.Unenroll(context.Background(), "s1", nil, time.Now())
	require.NoError(t, err)
	f.students.students["s1"].Active = false

	student, err := f.svc.Restore(context.Background(), "s1")
	require.NoError(t, err)

	assert.True(t, student.Active)
	assert.Nil(t, student.UnenrollmentDate)
	assert.Equal(t, []string{"s1"}, f.students.reactivated)

	stored := f.store.logs[log.ID]
	assert.Equal(t, models.UnenrollmentResolved, stored.Status)
	assert.Contains(t, stored.Notes, "Auto-resolved: Student restored")
}

func TestRestoreActiveStudentRejected(t *testing.T) {
	f := newUnenrollFixture()
	_, err := f.svc.Restore(context.Background(), "s1")

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, f.students.reactivated)
}

func TestListUnenrolled(t *testing.T) {
	f := newUnenrollFixture()
	_, err := f.svc.Unenroll(context.Background(), "s1", nil, time.Now())
	require.NoError(t, err)
	f.students.students["s1"].Active = false

	out, err := f.svc.ListUnenrolled(context.Background(), "site-1")
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "s1", out[0].StudentID)
	assert.Equal(t, "Ada", out[0].FullName)
	assert.Equal(t, 1, out[0].ArchiveCount)
}

func TestListPendingJoinsStudentFields(t *testing.T) {
	f := newUnenrollFixture()
	_, err := f.svc.Unenroll(context.Background(), "s1", nil, time.Now())
	require.NoError(t, err)

	views, err := f.svc.ListPending(context.Background())
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.Equal(t, "Ada", views[0].StudentName)
	assert.Equal(t, "G2", views[0].GradeLabel)
	assert.Equal(t, models.UnenrollmentPending, views[0].Log.Status)
}
