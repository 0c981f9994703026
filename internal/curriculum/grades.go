package curriculum

import (
	"fmt"
)

// Grade is the closed set of grade labels the curriculum defines
// requirements for. Unknown labels are rejected at parse time rather than
// silently mapped to a fallback.
type Grade string

const (
	GradePreK Grade = "PreK"
	GradeKG   Grade = "KG"
	GradeG1   Grade = "G1"
	GradeG2   Grade = "G2"
	GradeG3   Grade = "G3"
	GradeG4   Grade = "G4"
	GradeG5   Grade = "G5"
	GradeG6   Grade = "G6"
	GradeG7   Grade = "G7"
	GradeG8   Grade = "G8"
)

// Requirement holds the grade-specific lesson targets.
//
// BenchmarkDenominator is a negotiated target count, deliberately decoupled
// from len(MinLessons).
type Requirement struct {
	Grade                Grade
	MinLessons           []int
	CurrentYearLessons   []int
	BenchmarkDenominator int
	LetterBased          bool
}

var gradeRequirements map[Grade]Requirement

func init() {
	gradeRequirements = map[Grade]Requirement{
		GradePreK: {
			Grade:                GradePreK,
			MinLessons:           lessonRange(1, 26),
			BenchmarkDenominator: 26,
			LetterBased:          true,
		},
		GradeKG: {
			Grade:                GradeKG,
			MinLessons:           lessonRange(1, 34),
			BenchmarkDenominator: 34,
		},
		GradeG1: {
			Grade:                GradeG1,
			MinLessons:           concat(lessonRange(1, 34), lessonRange(42, 53)),
			CurrentYearLessons:   lessonRange(42, 53),
			BenchmarkDenominator: 44,
		},
		GradeG2: {
			Grade:                GradeG2,
			MinLessons:           concat(lessonRange(1, 34), lessonRange(42, 62)),
			CurrentYearLessons:   lessonRange(54, 62),
			BenchmarkDenominator: 56,
		},
		GradeG3: {
			Grade:                GradeG3,
			MinLessons:           concat(lessonRange(1, 34), lessonRange(42, 62)),
			CurrentYearLessons:   lessonRange(63, 83),
			BenchmarkDenominator: 56,
		},
		GradeG4: {
			Grade:                GradeG4,
			MinLessons:           concat(lessonRange(1, 34), lessonRange(42, 110)),
			CurrentYearLessons:   lessonRange(84, 110),
			BenchmarkDenominator: 103,
		},
		GradeG5: {
			Grade:                GradeG5,
			MinLessons:           concat(lessonRange(1, 34), lessonRange(42, 110)),
			CurrentYearLessons:   lessonRange(84, 110),
			BenchmarkDenominator: 103,
		},
		GradeG6: {
			Grade:                GradeG6,
			MinLessons:           concat(lessonRange(1, 34), lessonRange(42, 110)),
			CurrentYearLessons:   lessonRange(84, 128),
			BenchmarkDenominator: 103,
		},
		GradeG7: {
			Grade:                GradeG7,
			MinLessons:           concat(lessonRange(1, 34), lessonRange(42, 110)),
			CurrentYearLessons:   lessonRange(84, 128),
			BenchmarkDenominator: 103,
		},
		GradeG8: {
			Grade:                GradeG8,
			MinLessons:           concat(lessonRange(1, 34), lessonRange(42, 110)),
			CurrentYearLessons:   lessonRange(84, 128),
			BenchmarkDenominator: 103,
		},
	}
}

// ParseGrade validates a grade label against the closed enumeration.
func ParseGrade(label string) (Grade, error) {
	g := Grade(label)
	if _, ok := gradeRequirements[g]; !ok {
		return "", fmt.Errorf("unknown grade label %q", label)
	}
	return g, nil
}

// RequirementsFor returns the requirement set for a grade.
func RequirementsFor(grade Grade) (Requirement, error) {
	req, ok := gradeRequirements[grade]
	if !ok {
		return Requirement{}, fmt.Errorf("unknown grade label %q", grade)
	}
	return req, nil
}

// Grades returns the known grade labels in curriculum order.
func Grades() []Grade {
	return []Grade{GradePreK, GradeKG, GradeG1, GradeG2, GradeG3, GradeG4, GradeG5, GradeG6, GradeG7, GradeG8}
}

func concat(parts ...[]int) []int {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	out := make([]int, 0, size)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
