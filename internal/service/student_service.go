package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/readbridge/ufli-progress-api/internal/curriculum"
	"github.com/readbridge/ufli-progress-api/internal/models"
	appErrors "github.com/readbridge/ufli-progress-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByIDForSite(ctx context.Context, id, siteID string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

type groupRepository interface {
	ListBySite(ctx context.Context, siteID string) ([]models.Group, error)
}

// StudentService handles student roster operations.
type StudentService struct {
	students studentRepository
	groups   groupRepository
	logger   *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentRepository, groups groupRepository, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, groups: groups, logger: logger}
}

// List returns students matching the filter.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return s.students.List(ctx, filter)
}

// Get fetches one student scoped to a site.
func (s *StudentService) Get(ctx context.Context, id, siteID string) (*models.Student, error) {
	student, err := s.students.FindByIDForSite(ctx, id, siteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, err
	}
	return student, nil
}

// Create enrolls a new student. The grade label is validated against the
// curriculum's closed set here so a bad label can never enter the roster.
func (s *StudentService) Create(ctx context.Context, student *models.Student) error {
	if _, err := curriculum.ParseGrade(student.GradeLabel); err != nil {
		return appErrors.Clone(appErrors.ErrUnknownGrade, fmt.Sprintf("unknown grade label %q", student.GradeLabel))
	}
	student.Active = true
	if err := s.students.Create(ctx, student); err != nil {
		return err
	}
	s.logger.Info("student enrolled",
		zap.String("student_id", student.ID),
		zap.String("grade", student.GradeLabel))
	return nil
}

// ListGroups returns the groups at a site.
func (s *StudentService) ListGroups(ctx context.Context, siteID string) ([]models.Group, error) {
	return s.groups.ListBySite(ctx, siteID)
}
