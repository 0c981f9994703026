package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/readbridge/ufli-progress-api/internal/dto"
	"github.com/readbridge/ufli-progress-api/internal/models"
	appErrors "github.com/readbridge/ufli-progress-api/pkg/errors"
)

// UnenrollmentStudentStore is the slice of the student repository this
// service needs.
type UnenrollmentStudentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Reactivate(ctx context.Context, id string) error
	ListInactiveBySite(ctx context.Context, siteID string) ([]models.Student, error)
}

// UnenrollmentLedgerStore reads full ledger rows for archiving.
type UnenrollmentLedgerStore interface {
	ListByStudent(ctx context.Context, studentID string, isInitial bool) ([]models.LessonStatusRecord, error)
}

// UnenrollmentProgressStore reads cached progress records for archiving.
type UnenrollmentProgressStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ProgressRecord, error)
}

// UnenrollmentStore persists logs and archive snapshots.
type UnenrollmentStore interface {
	CreateWithArchive(ctx context.Context, log *models.UnenrollmentLog, archive *models.StudentArchive, unenrolledOn time.Time) error
	FindLogByID(ctx context.Context, id string) (*models.UnenrollmentLog, error)
	UpdateLogStatus(ctx context.Context, id string, status models.UnenrollmentStatus, notes string) error
	ListLogs(ctx context.Context, statuses ...models.UnenrollmentStatus) ([]models.UnenrollmentLog, error)
	PendingLogsByStudent(ctx context.Context, studentID string) ([]models.UnenrollmentLog, error)
	ListArchivesByStudent(ctx context.Context, studentID string) ([]models.StudentArchive, error)
	CountArchivesByStudent(ctx context.Context, studentID string) (int, error)
}

// UnenrollmentService manages the unenrollment lifecycle: archive and
// deactivate on report, then confirm, resolve or restore.
type UnenrollmentService struct {
	students UnenrollmentStudentStore
	ledger   UnenrollmentLedgerStore
	progress UnenrollmentProgressStore
	store    UnenrollmentStore
	cache    *redis.Client
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewUnenrollmentService constructs an UnenrollmentService. cache and metrics
// may be nil.
func NewUnenrollmentService(students UnenrollmentStudentStore, ledger UnenrollmentLedgerStore, progress UnenrollmentProgressStore, store UnenrollmentStore, cache *redis.Client, metrics *MetricsService, logger *zap.Logger) *UnenrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnenrollmentService{
		students: students,
		ledger:   ledger,
		progress: progress,
		store:    store,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// Unenroll snapshots the student's ledger and cached progress, writes a
// pending log and deactivates the student, all in one transaction. The
// snapshot is taken before anything changes so it reflects the state at the
// moment of the report.
func (s *UnenrollmentService) Unenroll(ctx context.Context, studentID string, reportedByID *string, reportedDate time.Time) (*models.UnenrollmentLog, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, err
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already unenrolled")
	}

	archive, err := s.buildArchive(ctx, student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrArchiveFailed.Code, appErrors.ErrArchiveFailed.Status, appErrors.ErrArchiveFailed.Message)
	}

	log := &models.UnenrollmentLog{
		StudentID:    student.ID,
		ReportedByID: reportedByID,
		ReportedDate: reportedDate,
		Status:       models.UnenrollmentPending,
		Notes:        fmt.Sprintf("Unenrollment reported on %s", reportedDate.Format("2006-01-02")),
	}
	if student.CurrentLesson != nil {
		lesson := fmt.Sprintf("Lesson %d", *student.CurrentLesson)
		log.LessonAtUnenroll = &lesson
	}

	if err := s.store.CreateWithArchive(ctx, log, archive, reportedDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrArchiveFailed.Code, appErrors.ErrArchiveFailed.Status, appErrors.ErrArchiveFailed.Message)
	}

	s.invalidateCache(ctx, student.ID)
	s.metrics.RecordUnenrollment()
	s.logger.Info("student unenrolled",
		zap.String("student_id", student.ID),
		zap.String("log_id", log.ID))
	return log, nil
}

// buildArchive captures the ledger split by assessment phase plus the cached
// progress records and denormalized state.
func (s *UnenrollmentService) buildArchive(ctx context.Context, student *models.Student) (*models.StudentArchive, error) {
	initialData, err := s.snapshotLedger(ctx, student.ID, true)
	if err != nil {
		return nil, err
	}
	currentData, err := s.snapshotLedger(ctx, student.ID, false)
	if err != nil {
		return nil, err
	}

	records, err := s.progress.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("load progress records: %w", err)
	}
	summary := models.ArchiveGradeSummary{
		ProgressRecords: records,
		CurrentLesson:   student.CurrentLesson,
		GradeLabel:      student.GradeLabel,
		GroupID:         student.GroupID,
	}
	summaryData, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("encode grade summary: %w", err)
	}

	return &models.StudentArchive{
		StudentID:             student.ID,
		InitialAssessmentData: initialData,
		CurrentProgressData:   currentData,
		GradeSummaryData:      summaryData,
	}, nil
}

func (s *UnenrollmentService) snapshotLedger(ctx context.Context, studentID string, isInitial bool) (json.RawMessage, error) {
	rows, err := s.ledger.ListByStudent(ctx, studentID, isInitial)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	snapshot := make(map[string]models.ArchivedStatus, len(rows))
	for _, row := range rows {
		snapshot[strconv.Itoa(row.LessonNumber)] = models.ArchivedStatus{
			Status: row.Status,
			Date:   row.CompletedDate,
		}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode ledger snapshot: %w", err)
	}
	return data, nil
}

// Confirm moves a pending log to confirmed.
func (s *UnenrollmentService) Confirm(ctx context.Context, logID string) (*models.UnenrollmentLog, error) {
	log, err := s.findLog(ctx, logID)
	if err != nil {
		return nil, err
	}
	if log.Status != models.UnenrollmentPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("log is %s, only pending logs can be confirmed", log.Status))
	}
	if err := s.store.UpdateLogStatus(ctx, log.ID, models.UnenrollmentConfirmed, log.Notes); err != nil {
		return nil, err
	}
	log.Status = models.UnenrollmentConfirmed
	return log, nil
}

// Resolve closes a log as mistaken and reactivates the student. The staff
// note is appended to the log's audit trail, never overwriting it.
func (s *UnenrollmentService) Resolve(ctx context.Context, logID, note string) (*models.UnenrollmentLog, error) {
	log, err := s.findLog(ctx, logID)
	if err != nil {
		return nil, err
	}
	if log.Status == models.UnenrollmentResolved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "log is already resolved")
	}

	notes := log.Notes + "\nResolution: " + note
	if err := s.store.UpdateLogStatus(ctx, log.ID, models.UnenrollmentResolved, notes); err != nil {
		return nil, err
	}
	if err := s.students.Reactivate(ctx, log.StudentID); err != nil {
		return nil, fmt.Errorf("reactivate student: %w", err)
	}

	s.invalidateCache(ctx, log.StudentID)
	log.Status = models.UnenrollmentResolved
	log.Notes = notes
	return log, nil
}

// Restore reactivates a student directly and auto-resolves any of their logs
// still pending, so no stale pending report survives a restoration.
func (s *UnenrollmentService) Restore(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, err
	}
	if student.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already active")
	}

	if err := s.students.Reactivate(ctx, studentID); err != nil {
		return nil, err
	}

	pending, err := s.store.PendingLogsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	for _, log := range pending {
		notes := log.Notes + "\nAuto-resolved: Student restored"
		if err := s.store.UpdateLogStatus(ctx, log.ID, models.UnenrollmentResolved, notes); err != nil {
			return nil, err
		}
	}

	s.invalidateCache(ctx, studentID)
	student.Active = true
	student.UnenrollmentDate = nil
	s.logger.Info("student restored",
		zap.String("student_id", studentID),
		zap.Int("auto_resolved_logs", len(pending)))
	return student, nil
}

// ListPending returns pending logs joined with student display fields.
func (s *UnenrollmentService) ListPending(ctx context.Context) ([]dto.UnenrollmentLogView, error) {
	logs, err := s.store.ListLogs(ctx, models.UnenrollmentPending)
	if err != nil {
		return nil, err
	}
	views := make([]dto.UnenrollmentLogView, 0, len(logs))
	for _, log := range logs {
		view := dto.UnenrollmentLogView{Log: log}
		if student, err := s.students.FindByID(ctx, log.StudentID); err == nil {
			view.StudentName = student.FullName
			view.GradeLabel = student.GradeLabel
		}
		views = append(views, view)
	}
	return views, nil
}

// ListUnenrolled returns the inactive students at a site with their archive
// counts.
func (s *UnenrollmentService) ListUnenrolled(ctx context.Context, siteID string) ([]dto.UnenrolledStudent, error) {
	students, err := s.students.ListInactiveBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UnenrolledStudent, 0, len(students))
	for _, student := range students {
		count, err := s.store.CountArchivesByStudent(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.UnenrolledStudent{
			StudentID:        student.ID,
			FullName:         student.FullName,
			GradeLabel:       student.GradeLabel,
			UnenrollmentDate: student.UnenrollmentDate,
			ArchiveCount:     count,
		})
	}
	return out, nil
}

// ArchivesForStudent returns a student's snapshots newest first.
func (s *UnenrollmentService) ArchivesForStudent(ctx context.Context, studentID string) ([]models.StudentArchive, error) {
	return s.store.ListArchivesByStudent(ctx, studentID)
}

func (s *UnenrollmentService) findLog(ctx context.Context, logID string) (*models.UnenrollmentLog, error) {
	log, err := s.store.FindLogByID(ctx, logID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unenrollment log not found")
		}
		return nil, err
	}
	return log, nil
}

func (s *UnenrollmentService) invalidateCache(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, progressCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn("progress cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
