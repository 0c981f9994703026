package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/readbridge/ufli-progress-api/internal/dto"
	"github.com/readbridge/ufli-progress-api/internal/models"
	appErrors "github.com/readbridge/ufli-progress-api/pkg/errors"
)

const entryDateLayout = "2006-01-02"

// EntryStudentStore is the slice of the student repository ingestion needs.
type EntryStudentStore interface {
	FindByIDForSite(ctx context.Context, id, siteID string) (*models.Student, error)
	AdvanceCurrentLesson(ctx context.Context, id string, lessonNumber int) error
	TouchActivity(ctx context.Context, id string, activityDate time.Time) error
}

// EntryGroupStore resolves groups within a site.
type EntryGroupStore interface {
	FindByIDForSite(ctx context.Context, id, siteID string) (*models.Group, error)
}

// EntryStaffStore resolves staff within a site.
type EntryStaffStore interface {
	FindByIDForSite(ctx context.Context, id, siteID string) (*models.Staff, error)
}

// EntryLessonStore resolves lessons by curriculum number.
type EntryLessonStore interface {
	FindByNumber(ctx context.Context, number int) (*models.Lesson, error)
}

// EntryLedgerStore upserts ledger rows. The returned bool reports whether the
// row was newly inserted.
type EntryLedgerStore interface {
	Upsert(ctx context.Context, record *models.LessonStatusRecord) (bool, error)
}

// EntryJournalStore appends journal entries.
type EntryJournalStore interface {
	Create(ctx context.Context, entry *models.LessonEntry) error
	List(ctx context.Context, filter models.LessonEntryFilter) ([]models.LessonEntry, int, error)
}

// ProgressRecalculator triggers a full recalculation for one student.
type ProgressRecalculator interface {
	Recalculate(ctx context.Context, student *models.Student) (*models.ProgressRecord, error)
}

// Unenroller handles the archive-and-deactivate path for U outcomes.
type Unenroller interface {
	Unenroll(ctx context.Context, studentID string, reportedByID *string, reportedDate time.Time) (*models.UnenrollmentLog, error)
}

// EntryService ingests batch lesson outcome submissions.
//
// Validation is two tier: problems with the batch context (group, teacher,
// lesson, date) reject the whole submission before anything is written, while
// per-student problems skip only that student and are reported back.
type EntryService struct {
	students EntryStudentStore
	groups   EntryGroupStore
	staff    EntryStaffStore
	lessons  EntryLessonStore
	ledger   EntryLedgerStore
	journal  EntryJournalStore
	recalc   ProgressRecalculator
	unenroll Unenroller
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewEntryService constructs an EntryService. metrics may be nil.
func NewEntryService(students EntryStudentStore, groups EntryGroupStore, staff EntryStaffStore, lessons EntryLessonStore, ledger EntryLedgerStore, journal EntryJournalStore, recalc ProgressRecalculator, unenroll Unenroller, metrics *MetricsService, logger *zap.Logger) *EntryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryService{
		students: students,
		groups:   groups,
		staff:    staff,
		lessons:  lessons,
		ledger:   ledger,
		journal:  journal,
		recalc:   recalc,
		unenroll: unenroll,
		metrics:  metrics,
		logger:   logger,
	}
}

// Submit processes one batch of outcomes for a lesson taught to a group.
func (s *EntryService) Submit(ctx context.Context, siteID string, req dto.SubmitEntriesRequest) (*dto.SubmitEntriesResult, error) {
	entryDate, err := time.Parse(entryDateLayout, req.EntryDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "entry_date must be formatted YYYY-MM-DD")
	}

	group, err := s.groups.FindByIDForSite(ctx, req.GroupID, siteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "group not found")
		}
		return nil, err
	}
	if _, err := s.staff.FindByIDForSite(ctx, req.StaffID, siteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "staff member not found")
		}
		return nil, err
	}
	lesson, err := s.lessons.FindByNumber(ctx, req.LessonNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("lesson %d not found", req.LessonNumber))
		}
		return nil, err
	}

	entryType := models.EntrySmallGroup
	if group.IsTutoringGroup {
		entryType = models.EntryTutoring
	}

	result := &dto.SubmitEntriesResult{
		LessonNumber: lesson.Number,
		GroupID:      group.ID,
		EntryDate:    entryDate,
	}
	touched := make([]*models.Student, 0, len(req.Outcomes))

	for _, outcome := range req.Outcomes {
		student, err := s.students.FindByIDForSite(ctx, outcome.StudentID, siteID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result.Errors = append(result.Errors, studentError(outcome.StudentID, "student not found"))
			} else {
				result.Errors = append(result.Errors, studentError(outcome.StudentID, "failed to load student: "+err.Error()))
				s.logger.Warn("student lookup failed during ingestion",
					zap.String("student_id", outcome.StudentID),
					zap.Error(err))
			}
			continue
		}

		status := models.LessonStatusCode(outcome.Status)
		if !status.Valid() {
			result.Errors = append(result.Errors, studentError(outcome.StudentID, fmt.Sprintf("invalid status %q", outcome.Status)))
			continue
		}

		// A U outcome is an unenrollment report, not a lesson result. It
		// never touches the ledger or the journal.
		if status == models.StatusUnenrolled {
			staffID := req.StaffID
			if _, err := s.unenroll.Unenroll(ctx, student.ID, &staffID, entryDate); err != nil {
				result.Errors = append(result.Errors, studentError(student.ID, err.Error()))
				continue
			}
			result.Unenrolled = append(result.Unenrolled, student.ID)
			s.metrics.RecordEntryIngested(string(status))
			continue
		}

		if err := s.recordOutcome(ctx, siteID, student, group, req.StaffID, lesson, entryDate, status, entryType, req.IsInitialAssessment, result); err != nil {
			result.Errors = append(result.Errors, studentError(student.ID, err.Error()))
			continue
		}
		s.metrics.RecordEntryIngested(string(status))
		touched = append(touched, student)
	}

	for _, student := range touched {
		if _, err := s.recalc.Recalculate(ctx, student); err != nil {
			result.Errors = append(result.Errors, studentError(student.ID, "recalculation failed: "+err.Error()))
			s.logger.Warn("post-ingest recalculation failed",
				zap.String("student_id", student.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("entries submitted",
		zap.String("group_id", group.ID),
		zap.Int("lesson_number", lesson.Number),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("unenrolled", len(result.Unenrolled)),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *EntryService) recordOutcome(ctx context.Context, siteID string, student *models.Student, group *models.Group, staffID string, lesson *models.Lesson, entryDate time.Time, status models.LessonStatusCode, entryType models.EntryType, isInitial bool, result *dto.SubmitEntriesResult) error {
	entry := &models.LessonEntry{
		SiteID:    siteID,
		StudentID: student.ID,
		GroupID:   group.ID,
		StaffID:   staffID,
		LessonID:  lesson.ID,
		EntryDate: entryDate,
		Status:    status,
		EntryType: entryType,
	}
	if err := s.journal.Create(ctx, entry); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}

	groupID := group.ID
	staff := staffID
	record := &models.LessonStatusRecord{
		StudentID:           student.ID,
		LessonID:            lesson.ID,
		GroupID:             &groupID,
		StaffID:             &staff,
		Status:              status,
		CompletedDate:       entryDate,
		IsInitialAssessment: isInitial,
	}
	created, err := s.ledger.Upsert(ctx, record)
	if err != nil {
		return fmt.Errorf("upsert ledger row: %w", err)
	}
	if created {
		result.Created++
	} else {
		result.Updated++
	}

	// The pointer only tracks the current phase and only moves forward; the
	// recalculation pass afterwards reconciles any disagreement.
	if status == models.StatusPassed && !isInitial {
		if err := s.students.AdvanceCurrentLesson(ctx, student.ID, lesson.Number); err != nil {
			return fmt.Errorf("advance current lesson: %w", err)
		}
	}
	if err := s.students.TouchActivity(ctx, student.ID, entryDate); err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}
	return nil
}

// ListEntries returns journal entries scoped to a site.
func (s *EntryService) ListEntries(ctx context.Context, filter models.LessonEntryFilter) ([]models.LessonEntry, int, error) {
	return s.journal.List(ctx, filter)
}

func studentError(studentID, message string) dto.StudentError {
	return dto.StudentError{StudentID: studentID, Message: message}
}
