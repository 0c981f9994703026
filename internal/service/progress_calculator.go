package service

import (
	"math"
	"strconv"

	"github.com/readbridge/ufli-progress-api/internal/curriculum"
	"github.com/readbridge/ufli-progress-api/internal/models"
)

// MetricResult pairs a raw pass count with its percentage.
type MetricResult struct {
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

// ProgressMetrics is the full output of one aggregation pass over a
// student's current-phase ledger.
type ProgressMetrics struct {
	Foundational  MetricResult       `json:"foundational"`
	MinGrade      MetricResult       `json:"min_grade"`
	FullGrade     MetricResult       `json:"full_grade"`
	Benchmark     MetricResult       `json:"benchmark"`
	SkillSections map[string]float64 `json:"skill_sections"`
	CurrentLesson *int               `json:"current_lesson,omitempty"`
}

// CalculateProgress derives every metric from the status map. All
// percentages are 0 when their denominator is 0.
func CalculateProgress(statuses models.StatusMap, req curriculum.Requirement) ProgressMetrics {
	return ProgressMetrics{
		Foundational:  calculateFoundational(statuses),
		MinGrade:      calculateMinGrade(statuses, req),
		FullGrade:     calculateFullGrade(statuses, req),
		Benchmark:     calculateBenchmark(statuses, req),
		SkillSections: calculateAllSections(statuses),
		CurrentLesson: calculateCurrentLesson(statuses),
	}
}

func calculateFoundational(statuses models.StatusMap) MetricResult {
	count := passCount(statuses, curriculum.FoundationalLessons())
	return MetricResult{Count: count, Pct: percentage(count, curriculum.FoundationalMax)}
}

// Review lessons are excluded from both numerator and denominator of the
// minimum-grade metric regardless of their recorded outcome.
func calculateMinGrade(statuses models.StatusMap, req curriculum.Requirement) MetricResult {
	nonReview := curriculum.ExcludeReviews(req.MinLessons)
	count := passCount(statuses, nonReview)
	return MetricResult{Count: count, Pct: percentage(count, len(nonReview))}
}

func calculateFullGrade(statuses models.StatusMap, req curriculum.Requirement) MetricResult {
	if len(req.CurrentYearLessons) == 0 {
		return MetricResult{}
	}
	count := passCount(statuses, req.CurrentYearLessons)
	return MetricResult{Count: count, Pct: percentage(count, len(req.CurrentYearLessons))}
}

// The benchmark shares the minimum-grade numerator but divides by the
// grade's negotiated denominator instead of the literal lesson count.
func calculateBenchmark(statuses models.StatusMap, req curriculum.Requirement) MetricResult {
	nonReview := curriculum.ExcludeReviews(req.MinLessons)
	count := passCount(statuses, nonReview)
	return MetricResult{Count: count, Pct: percentage(count, req.BenchmarkDenominator)}
}

func calculateAllSections(statuses models.StatusMap) map[string]float64 {
	result := make(map[string]float64, 17)
	for _, section := range curriculum.Sections() {
		result[sectionKey(section.ID)] = SectionPercentage(statuses, section.Lessons)
	}
	return result
}

// SectionPercentage applies the review-override rule:
//
// When at least one of the section's review lessons has any recorded
// outcome and every recorded review lesson passed, the section is 100%
// outright. Otherwise the percentage comes from the non-review lessons
// alone; review lessons never enter that denominator.
func SectionPercentage(statuses models.StatusMap, sectionLessons []int) float64 {
	if len(sectionLessons) == 0 {
		return 0
	}

	var reviewRecorded, reviewPassed int
	nonReview := make([]int, 0, len(sectionLessons))
	for _, n := range sectionLessons {
		if !curriculum.IsReview(n) {
			nonReview = append(nonReview, n)
			continue
		}
		status, ok := statuses[n]
		if !ok {
			continue
		}
		reviewRecorded++
		if status == models.StatusPassed {
			reviewPassed++
		}
	}

	if reviewRecorded > 0 && reviewRecorded == reviewPassed {
		return 100
	}

	if len(nonReview) == 0 {
		return 0
	}
	return percentage(passCount(statuses, nonReview), len(nonReview))
}

// calculateCurrentLesson returns the highest lesson number with a passed
// status, or nil when nothing has passed yet.
func calculateCurrentLesson(statuses models.StatusMap) *int {
	max := 0
	for number, status := range statuses {
		if status == models.StatusPassed && number > max {
			max = number
		}
	}
	if max == 0 {
		return nil
	}
	return &max
}

// SectionBreakdown expands the section percentages into the per-section
// detail served by the API.
func SectionBreakdown(statuses models.StatusMap) []models.SectionProgress {
	sections := curriculum.Sections()
	result := make([]models.SectionProgress, 0, len(sections))
	for _, section := range sections {
		nonReview := curriculum.ExcludeReviews(section.Lessons)
		result = append(result, models.SectionProgress{
			SectionID:      section.ID,
			SectionName:    section.Name,
			LessonCount:    len(nonReview),
			CompletedCount: passCount(statuses, nonReview),
			Percentage:     roundPct(SectionPercentage(statuses, section.Lessons)),
		})
	}
	return result
}

func passCount(statuses models.StatusMap, lessons []int) int {
	count := 0
	for _, n := range lessons {
		if statuses[n] == models.StatusPassed {
			count++
		}
	}
	return count
}

func percentage(count, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(count) / float64(denominator) * 100
}

func sectionKey(id int) string {
	return "section_" + strconv.Itoa(id)
}

// roundPct rounds to two decimal places at the storage boundary.
func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
