package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/readbridge/ufli-progress-api/internal/curriculum"
	"github.com/readbridge/ufli-progress-api/internal/dto"
	"github.com/readbridge/ufli-progress-api/internal/models"
	"github.com/readbridge/ufli-progress-api/pkg/config"
	appErrors "github.com/readbridge/ufli-progress-api/pkg/errors"
)

// ProgressStudentStore is the slice of the student repository the progress
// service needs.
type ProgressStudentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListActiveBySite(ctx context.Context, siteID string) ([]models.Student, error)
	SetCurrentLesson(ctx context.Context, id string, lessonNumber *int) error
}

// ProgressLedgerStore reads the lesson status ledger.
type ProgressLedgerStore interface {
	StatusMapByStudent(ctx context.Context, studentID string, isInitial bool) (models.StatusMap, error)
}

// ProgressRecordStore persists cached progress records.
type ProgressRecordStore interface {
	Upsert(ctx context.Context, record *models.ProgressRecord) error
	FindByStudent(ctx context.Context, studentID string, recordType models.ProgressRecordType) (*models.ProgressRecord, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ProgressRecord, error)
}

// ProgressService recomputes and serves student progress.
type ProgressService struct {
	students ProgressStudentStore
	ledger   ProgressLedgerStore
	records  ProgressRecordStore
	cache    *redis.Client
	cacheCfg config.ProgressConfig
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewProgressService constructs a ProgressService. cache and metrics may be
// nil, in which case every read goes to the database and nothing is counted.
func NewProgressService(students ProgressStudentStore, ledger ProgressLedgerStore, records ProgressRecordStore, cache *redis.Client, cacheCfg config.ProgressConfig, metrics *MetricsService, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{
		students: students,
		ledger:   ledger,
		records:  records,
		cache:    cache,
		cacheCfg: cacheCfg,
		metrics:  metrics,
		logger:   logger,
	}
}

func progressCacheKey(studentID string) string {
	return "progress:" + studentID
}

// Recalculate rebuilds both cached record variants for a student from the
// ledger, reconciles the current-lesson pointer and refreshes the cache entry.
// The ledger stays authoritative: everything written here is recomputable.
func (s *ProgressService) Recalculate(ctx context.Context, student *models.Student) (*models.ProgressRecord, error) {
	start := time.Now()
	record, err := s.recalculate(ctx, student)
	s.metrics.RecordRecalculation(err == nil, time.Since(start))
	return record, err
}

func (s *ProgressService) recalculate(ctx context.Context, student *models.Student) (*models.ProgressRecord, error) {
	grade, err := curriculum.ParseGrade(student.GradeLabel)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnknownGrade, fmt.Sprintf("unknown grade label %q for student %s", student.GradeLabel, student.ID))
	}
	req, err := curriculum.RequirementsFor(grade)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnknownGrade, err.Error())
	}

	current, err := s.recalculateVariant(ctx, student.ID, req, models.ProgressCurrent)
	if err != nil {
		return nil, err
	}
	if _, err := s.recalculateVariant(ctx, student.ID, req, models.ProgressInitialAssessment); err != nil {
		return nil, err
	}

	metrics, err := s.currentMetrics(ctx, student.ID, req)
	if err != nil {
		return nil, err
	}
	if err := s.students.SetCurrentLesson(ctx, student.ID, metrics.CurrentLesson); err != nil {
		return nil, fmt.Errorf("reconcile current lesson: %w", err)
	}

	s.invalidateCache(ctx, student.ID)
	return current, nil
}

// RecalculateStudent is Recalculate keyed by ID.
func (s *ProgressService) RecalculateStudent(ctx context.Context, studentID string) (*models.ProgressRecord, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, err
	}
	return s.Recalculate(ctx, student)
}

// RecalculateAll recomputes every active student at a site. One student's
// failure never aborts the pass; failures are collected and reported.
func (s *ProgressService) RecalculateAll(ctx context.Context, siteID string) (*dto.RecalcSummary, error) {
	students, err := s.students.ListActiveBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	summary := &dto.RecalcSummary{}
	for i := range students {
		summary.Processed++
		if _, err := s.Recalculate(ctx, &students[i]); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, dto.StudentError{StudentID: students[i].ID, Message: err.Error()})
			s.logger.Warn("recalculation failed",
				zap.String("student_id", students[i].ID),
				zap.Error(err))
			continue
		}
		summary.Succeeded++
	}
	return summary, nil
}

func (s *ProgressService) recalculateVariant(ctx context.Context, studentID string, req curriculum.Requirement, recordType models.ProgressRecordType) (*models.ProgressRecord, error) {
	isInitial := recordType == models.ProgressInitialAssessment
	statuses, err := s.ledger.StatusMapByStudent(ctx, studentID, isInitial)
	if err != nil {
		return nil, fmt.Errorf("load status map: %w", err)
	}

	metrics := CalculateProgress(statuses, req)
	record, err := buildProgressRecord(studentID, recordType, metrics)
	if err != nil {
		return nil, err
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ProgressService) currentMetrics(ctx context.Context, studentID string, req curriculum.Requirement) (ProgressMetrics, error) {
	statuses, err := s.ledger.StatusMapByStudent(ctx, studentID, false)
	if err != nil {
		return ProgressMetrics{}, fmt.Errorf("load status map: %w", err)
	}
	return CalculateProgress(statuses, req), nil
}

// buildProgressRecord converts raw metrics into the storage shape, rounding
// every percentage to two decimals here and nowhere earlier.
func buildProgressRecord(studentID string, recordType models.ProgressRecordType, metrics ProgressMetrics) (*models.ProgressRecord, error) {
	rounded := make(map[string]float64, len(metrics.SkillSections))
	for key, pct := range metrics.SkillSections {
		rounded[key] = roundPct(pct)
	}
	sections, err := json.Marshal(rounded)
	if err != nil {
		return nil, fmt.Errorf("encode skill sections: %w", err)
	}

	return &models.ProgressRecord{
		StudentID:         studentID,
		RecordType:        recordType,
		FoundationalCount: metrics.Foundational.Count,
		FoundationalPct:   roundPct(metrics.Foundational.Pct),
		MinGradeCount:     metrics.MinGrade.Count,
		MinGradePct:       roundPct(metrics.MinGrade.Pct),
		FullGradeCount:    metrics.FullGrade.Count,
		FullGradePct:      roundPct(metrics.FullGrade.Pct),
		BenchmarkCount:    metrics.Benchmark.Count,
		BenchmarkPct:      roundPct(metrics.Benchmark.Pct),
		SkillSections:     sections,
		CalculatedAt:      time.Now().UTC(),
	}, nil
}

// Get assembles the progress view for a student, serving from Redis when the
// cached copy is still fresh.
func (s *ProgressService) Get(ctx context.Context, studentID string) (*dto.StudentProgress, error) {
	if cached := s.readCache(ctx, studentID); cached != nil {
		return cached, nil
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, err
	}

	records, err := s.records.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	view := &dto.StudentProgress{
		StudentID:        student.ID,
		FullName:         student.FullName,
		GradeLabel:       student.GradeLabel,
		CurrentLesson:    student.CurrentLesson,
		LastActivityDate: student.LastActivityDate,
		Active:           student.Active,
	}
	if student.CurrentLesson != nil {
		view.CurrentLessonName = curriculum.LessonName(*student.CurrentLesson)
	}
	for i := range records {
		switch records[i].RecordType {
		case models.ProgressCurrent:
			view.Current = &records[i]
		case models.ProgressInitialAssessment:
			view.Initial = &records[i]
		}
	}

	s.writeCache(ctx, studentID, view)
	return view, nil
}

// SectionDetail expands one skill section into lesson-level statuses for a
// student's current phase.
func (s *ProgressService) SectionDetail(ctx context.Context, studentID string, sectionID int) (*dto.SectionDetail, error) {
	var section *curriculum.Section
	for _, candidate := range curriculum.Sections() {
		if candidate.ID == sectionID {
			match := candidate
			section = &match
			break
		}
	}
	if section == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "skill section not found")
	}

	statuses, err := s.ledger.StatusMapByStudent(ctx, studentID, false)
	if err != nil {
		return nil, fmt.Errorf("load status map: %w", err)
	}

	detail := &dto.SectionDetail{
		SectionID:   section.ID,
		SectionName: section.Name,
		Percentage:  roundPct(SectionPercentage(statuses, section.Lessons)),
	}
	for _, number := range section.Lessons {
		row := dto.SectionLessonStatus{
			LessonNumber: number,
			LessonName:   curriculum.LessonName(number),
			IsReview:     curriculum.IsReview(number),
		}
		if status, ok := statuses[number]; ok {
			code := string(status)
			row.Status = &code
		}
		detail.Lessons = append(detail.Lessons, row)
	}
	return detail, nil
}

// Breakdown returns the per-section summary for a student's current phase.
func (s *ProgressService) Breakdown(ctx context.Context, studentID string) ([]models.SectionProgress, error) {
	statuses, err := s.ledger.StatusMapByStudent(ctx, studentID, false)
	if err != nil {
		return nil, fmt.Errorf("load status map: %w", err)
	}
	return SectionBreakdown(statuses), nil
}

func (s *ProgressService) readCache(ctx context.Context, studentID string) *dto.StudentProgress {
	if s.cache == nil || !s.cacheCfg.CacheEnabled {
		return nil
	}
	raw, err := s.cache.Get(ctx, progressCacheKey(studentID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("progress cache read failed", zap.String("student_id", studentID), zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
		return nil
	}
	var view dto.StudentProgress
	if err := json.Unmarshal(raw, &view); err != nil {
		s.metrics.RecordCacheLookup(false)
		return nil
	}
	s.metrics.RecordCacheLookup(true)
	return &view
}

func (s *ProgressService) writeCache(ctx context.Context, studentID string, view *dto.StudentProgress) {
	if s.cache == nil || !s.cacheCfg.CacheEnabled {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, progressCacheKey(studentID), raw, s.cacheCfg.CacheTTL).Err(); err != nil {
		s.logger.Warn("progress cache write failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *ProgressService) invalidateCache(ctx context.Context, studentID string) {
	if s.cache == nil || !s.cacheCfg.CacheEnabled {
		return
	}
	if err := s.cache.Del(ctx, progressCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn("progress cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
