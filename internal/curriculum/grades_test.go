package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrade(t *testing.T) {
	for _, grade := range Grades() {
		parsed, err := ParseGrade(string(grade))
		require.NoError(t, err)
		assert.Equal(t, grade, parsed)
	}
}

func TestParseGradeRejectsUnknownLabels(t *testing.T) {
	for _, label := range []string{"", "K", "kg", "Grade 1", "G9", "PREK"} {
		_, err := ParseGrade(label)
		assert.Error(t, err, "label %q must be rejected", label)
	}
}

func TestRequirementsFor(t *testing.T) {
	tests := []struct {
		grade         Grade
		minTotal      int
		minNonReview  int
		currentYear   int
		benchmark     int
	}{
		{GradePreK, 26, 26, 0, 26},
		{GradeKG, 34, 34, 0, 34},
		{GradeG1, 46, 44, 12, 44},
		{GradeG2, 55, 50, 9, 56},
		{GradeG3, 55, 50, 21, 56},
		{GradeG4, 103, 87, 27, 103},
		{GradeG5, 103, 87, 27, 103},
		{GradeG6, 103, 87, 45, 103},
		{GradeG7, 103, 87, 45, 103},
		{GradeG8, 103, 87, 45, 103},
	}

	for _, tt := range tests {
		req, err := RequirementsFor(tt.grade)
		require.NoError(t, err, "grade %s", tt.grade)
		assert.Len(t, req.MinLessons, tt.minTotal, "grade %s min lessons", tt.grade)
		assert.Len(t, ExcludeReviews(req.MinLessons), tt.minNonReview, "grade %s non-review min lessons", tt.grade)
		assert.Len(t, req.CurrentYearLessons, tt.currentYear, "grade %s current year lessons", tt.grade)
		assert.Equal(t, tt.benchmark, req.BenchmarkDenominator, "grade %s benchmark denominator", tt.grade)
	}
}

func TestPreKIsLetterBased(t *testing.T) {
	req, err := RequirementsFor(GradePreK)
	require.NoError(t, err)
	assert.True(t, req.LetterBased)

	req, err = RequirementsFor(GradeKG)
	require.NoError(t, err)
	assert.False(t, req.LetterBased)
}
