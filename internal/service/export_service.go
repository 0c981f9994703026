package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/readbridge/ufli-progress-api/internal/curriculum"
	"github.com/readbridge/ufli-progress-api/internal/models"
	appErrors "github.com/readbridge/ufli-progress-api/pkg/errors"
	"github.com/readbridge/ufli-progress-api/pkg/export"
)

// ExportStudentStore is the slice of the student repository exports need.
type ExportStudentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.Student, error)
}

// ExportProgressStore reads cached progress records for exports.
type ExportProgressStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ProgressRecord, error)
}

// ExportGroupStore resolves groups within a site.
type ExportGroupStore interface {
	FindByIDForSite(ctx context.Context, id, siteID string) (*models.Group, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders student and group progress reports.
type ExportService struct {
	students ExportStudentStore
	progress ExportProgressStore
	groups   ExportGroupStore
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(students ExportStudentStore, progress ExportProgressStore, groups ExportGroupStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students: students,
		progress: progress,
		groups:   groups,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// StudentReportPDF renders one student's progress as a PDF report.
func (s *ExportService) StudentReportPDF(ctx context.Context, studentID string) (*ExportFile, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, err
	}

	records, err := s.progress.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var current *models.ProgressRecord
	for i := range records {
		if records[i].RecordType == models.ProgressCurrent {
			current = &records[i]
			break
		}
	}

	dataset := export.Dataset{
		Headers: []string{"Metric", "Completed", "Percent"},
	}
	if current != nil {
		dataset.Rows = append(dataset.Rows,
			metricRow("Foundational (1-34)", current.FoundationalCount, current.FoundationalPct),
			metricRow("Minimum Grade Level", current.MinGradeCount, current.MinGradePct),
			metricRow("Full Grade Level", current.FullGradeCount, current.FullGradePct),
			metricRow("Benchmark", current.BenchmarkCount, current.BenchmarkPct),
		)
		sections, err := current.SectionPercentages()
		if err == nil {
			for _, section := range curriculum.Sections() {
				key := "section_" + strconv.Itoa(section.ID)
				dataset.Rows = append(dataset.Rows, map[string]string{
					"Metric":    section.Name,
					"Completed": "",
					"Percent":   formatPct(sections[key]),
				})
			}
		}
	}

	data, err := s.pdf.Render(dataset, export.ReportMeta{
		Title:       "UFLI Progress Report",
		Subtitle:    fmt.Sprintf("%s (%s)", student.FullName, student.GradeLabel),
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("render student report: %w", err)
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("progress-%s-%s.pdf", student.ID, time.Now().UTC().Format("20060102")),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// GroupProgressCSV renders a group's roster with headline metrics as CSV.
func (s *ExportService) GroupProgressCSV(ctx context.Context, siteID, groupID string) (*ExportFile, error) {
	group, err := s.groups.FindByIDForSite(ctx, groupID, siteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, err
	}

	students, err := s.students.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Grade", "Current Lesson", "Foundational %", "Min Grade %", "Full Grade %", "Benchmark %"},
	}
	for _, student := range students {
		row := map[string]string{
			"Student": student.FullName,
			"Grade":   student.GradeLabel,
		}
		if student.CurrentLesson != nil {
			row["Current Lesson"] = strconv.Itoa(*student.CurrentLesson)
		}
		records, err := s.progress.ListByStudent(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		for i := range records {
			if records[i].RecordType != models.ProgressCurrent {
				continue
			}
			row["Foundational %"] = formatPct(records[i].FoundationalPct)
			row["Min Grade %"] = formatPct(records[i].MinGradePct)
			row["Full Grade %"] = formatPct(records[i].FullGradePct)
			row["Benchmark %"] = formatPct(records[i].BenchmarkPct)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, fmt.Errorf("render group export: %w", err)
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("group-%s-%s.csv", group.ID, time.Now().UTC().Format("20060102")),
		ContentType: "text/csv",
		Data:        data,
	}, nil
}

func metricRow(name string, count int, pct float64) map[string]string {
	return map[string]string{
		"Metric":    name,
		"Completed": strconv.Itoa(count),
		"Percent":   formatPct(pct),
	}
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
