package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readbridge/ufli-progress-api/internal/curriculum"
	"github.com/readbridge/ufli-progress-api/internal/models"
)

func requirementFor(t *testing.T, label string) curriculum.Requirement {
	t.Helper()
	grade, err := curriculum.ParseGrade(label)
	require.NoError(t, err)
	req, err := curriculum.RequirementsFor(grade)
	require.NoError(t, err)
	return req
}

func passRange(statuses models.StatusMap, from, to int) {
	for n := from; n <= to; n++ {
		statuses[n] = models.StatusPassed
	}
}

func failRange(statuses models.StatusMap, from, to int) {
	for n := from; n <= to; n++ {
		statuses[n] = models.StatusFailed
	}
}

func TestCalculateProgressEmptyLedger(t *testing.T) {
	metrics := CalculateProgress(models.StatusMap{}, requirementFor(t, "G1"))

	assert.Zero(t, metrics.Foundational.Count)
	assert.Zero(t, metrics.Foundational.Pct)
	assert.Zero(t, metrics.MinGrade.Count)
	assert.Zero(t, metrics.MinGrade.Pct)
	assert.Zero(t, metrics.FullGrade.Count)
	assert.Zero(t, metrics.FullGrade.Pct)
	assert.Zero(t, metrics.Benchmark.Count)
	assert.Zero(t, metrics.Benchmark.Pct)
	assert.Nil(t, metrics.CurrentLesson)

	require.Len(t, metrics.SkillSections, 17)
	for key, pct := range metrics.SkillSections {
		assert.Zero(t, pct, "section %s", key)
	}
}

func TestCalculateProgressFirstGradeScenario(t *testing.T) {
	statuses := models.StatusMap{}
	passRange(statuses, 1, 34)
	passRange(statuses, 42, 47)
	failRange(statuses, 48, 53)

	metrics := CalculateProgress(statuses, requirementFor(t, "G1"))

	assert.Equal(t, 34, metrics.Foundational.Count)
	assert.InDelta(t, 100.0, metrics.Foundational.Pct, 1e-9)

	// Min set is 1-34 plus 42-53 with reviews 49 and 53 excluded: 44 lessons,
	// 40 of them passed.
	assert.Equal(t, 40, metrics.MinGrade.Count)
	assert.InDelta(t, 100.0*40/44, metrics.MinGrade.Pct, 1e-9)

	assert.Equal(t, 40, metrics.Benchmark.Count)
	assert.InDelta(t, 100.0*40/44, metrics.Benchmark.Pct, 1e-9)

	// Current year is 42-53: 6 of 12 passed.
	assert.Equal(t, 6, metrics.FullGrade.Count)
	assert.InDelta(t, 50.0, metrics.FullGrade.Pct, 1e-9)

	require.NotNil(t, metrics.CurrentLesson)
	assert.Equal(t, 47, *metrics.CurrentLesson)
}

func TestFoundationalIsGradeIndependent(t *testing.T) {
	statuses := models.StatusMap{}
	passRange(statuses, 1, 20)

	kg := CalculateProgress(statuses, requirementFor(t, "KG"))
	g4 := CalculateProgress(statuses, requirementFor(t, "G4"))

	assert.Equal(t, kg.Foundational, g4.Foundational)
	assert.Equal(t, 20, kg.Foundational.Count)
	assert.InDelta(t, 100.0*20/34, kg.Foundational.Pct, 1e-9)
}

func TestKindergartenHasNoFullGradeMetric(t *testing.T) {
	statuses := models.StatusMap{}
	passRange(statuses, 1, 34)

	metrics := CalculateProgress(statuses, requirementFor(t, "KG"))

	assert.Zero(t, metrics.FullGrade.Count)
	assert.Zero(t, metrics.FullGrade.Pct)

	// For KG the three remaining headline metrics coincide.
	assert.Equal(t, metrics.Foundational, metrics.MinGrade)
	assert.Equal(t, metrics.Foundational, metrics.Benchmark)
}

func TestBenchmarkUsesNegotiatedDenominator(t *testing.T) {
	statuses := models.StatusMap{}
	passRange(statuses, 1, 34)
	passRange(statuses, 42, 62)

	metrics := CalculateProgress(statuses, requirementFor(t, "G2"))

	// 50 non-review passes over the literal 50-lesson min set, but over the
	// negotiated denominator of 56 for the benchmark.
	assert.Equal(t, 50, metrics.MinGrade.Count)
	assert.InDelta(t, 100.0, metrics.MinGrade.Pct, 1e-9)
	assert.Equal(t, 50, metrics.Benchmark.Count)
	assert.InDelta(t, 100.0*50/56, metrics.Benchmark.Pct, 1e-9)
}

// Section 3 (lessons 35-41) has a single non-review lesson, 38. It is the
// sharpest probe of the review-override rule.
func TestSectionPercentageReviewOverride(t *testing.T) {
	section := curriculum.LessonsInSection(3)
	require.NotNil(t, section)

	t.Run("all recorded reviews passed", func(t *testing.T) {
		statuses := models.StatusMap{35: models.StatusPassed, 36: models.StatusPassed}
		assert.InDelta(t, 100.0, SectionPercentage(statuses, section), 1e-9)
	})

	t.Run("one recorded review failed", func(t *testing.T) {
		statuses := models.StatusMap{35: models.StatusPassed, 36: models.StatusFailed}
		assert.Zero(t, SectionPercentage(statuses, section))
	})

	t.Run("failed review does not hide non-review passes", func(t *testing.T) {
		statuses := models.StatusMap{35: models.StatusFailed, 38: models.StatusPassed}
		assert.InDelta(t, 100.0, SectionPercentage(statuses, section), 1e-9)
	})

	t.Run("no reviews recorded falls back to non-review lessons", func(t *testing.T) {
		statuses := models.StatusMap{38: models.StatusPassed}
		assert.InDelta(t, 100.0, SectionPercentage(statuses, section), 1e-9)
	})

	t.Run("nothing recorded", func(t *testing.T) {
		assert.Zero(t, SectionPercentage(models.StatusMap{}, section))
	})
}

func TestSectionPercentageMixedSection(t *testing.T) {
	// Section 4 is lessons 42-53 with reviews 49 and 53.
	section := curriculum.LessonsInSection(4)
	require.NotNil(t, section)

	statuses := models.StatusMap{}
	passRange(statuses, 42, 47)
	failRange(statuses, 48, 53)

	// Review 49 was recorded as failed, so no override; 6 of the 10
	// non-review lessons passed.
	assert.InDelta(t, 60.0, SectionPercentage(statuses, section), 1e-9)
}

func TestSectionPercentageAbsentDoesNotCount(t *testing.T) {
	section := curriculum.LessonsInSection(3)
	require.NotNil(t, section)

	// An absent review is recorded but not passed: no override.
	statuses := models.StatusMap{35: models.StatusAbsent, 38: models.StatusPassed}
	assert.InDelta(t, 100.0, SectionPercentage(statuses, section), 1e-9)

	statuses = models.StatusMap{35: models.StatusAbsent}
	assert.Zero(t, SectionPercentage(statuses, section))
}

func TestCurrentLessonIgnoresNonPasses(t *testing.T) {
	statuses := models.StatusMap{
		10: models.StatusPassed,
		50: models.StatusFailed,
		90: models.StatusAbsent,
	}
	metrics := CalculateProgress(statuses, requirementFor(t, "G4"))

	require.NotNil(t, metrics.CurrentLesson)
	assert.Equal(t, 10, *metrics.CurrentLesson)
}

func TestSectionBreakdown(t *testing.T) {
	statuses := models.StatusMap{}
	passRange(statuses, 1, 34)

	breakdown := SectionBreakdown(statuses)
	require.Len(t, breakdown, 17)

	first := breakdown[0]
	assert.Equal(t, 1, first.SectionID)
	assert.Equal(t, 34, first.LessonCount)
	assert.Equal(t, 34, first.CompletedCount)
	assert.InDelta(t, 100.0, first.Percentage, 1e-9)

	// Blends section shares lessons 25 and 27 with section 1.
	blends := breakdown[1]
	assert.Equal(t, 2, blends.SectionID)
	assert.Equal(t, 2, blends.CompletedCount)
	assert.InDelta(t, 100.0, blends.Percentage, 1e-9)
}

func TestRoundPct(t *testing.T) {
	assert.InDelta(t, 90.91, roundPct(100.0*40/44), 1e-9)
	assert.InDelta(t, 66.67, roundPct(100.0*2/3), 1e-9)
	assert.InDelta(t, 0.0, roundPct(0), 1e-9)
	assert.InDelta(t, 100.0, roundPct(100), 1e-9)
}
