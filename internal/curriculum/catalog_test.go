package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLessons(t *testing.T) {
	reviews := ReviewLessons()
	assert.Len(t, reviews, 23)

	for _, n := range reviews {
		assert.True(t, IsReview(n), "lesson %d should be a review lesson", n)
	}

	assert.True(t, IsReview(49))
	assert.True(t, IsReview(128))
	assert.False(t, IsReview(38), "lesson 38 teaches new content inside the review block")
	assert.False(t, IsReview(34), "lesson 34 is foundational despite its name")
	assert.False(t, IsReview(1))
}

func TestFoundationalLessons(t *testing.T) {
	foundational := FoundationalLessons()
	require.Len(t, foundational, FoundationalMax)
	assert.Equal(t, 1, foundational[0])
	assert.Equal(t, 34, foundational[len(foundational)-1])

	assert.True(t, IsFoundational(1))
	assert.True(t, IsFoundational(34))
	assert.False(t, IsFoundational(35))
	assert.False(t, IsFoundational(0))
}

func TestSectionsCoverCatalog(t *testing.T) {
	all := Sections()
	require.Len(t, all, 17)

	// Every lesson 1..128 must belong to at least one section.
	covered := make(map[int]bool)
	for _, section := range all {
		assert.NotEmpty(t, section.Name)
		for _, n := range section.Lessons {
			covered[n] = true
		}
	}
	for n := 1; n <= TotalLessons; n++ {
		assert.True(t, covered[n], "lesson %d not covered by any section", n)
	}
}

func TestSectionOverlap(t *testing.T) {
	// The blends section reuses two lessons from section 1.
	blends := LessonsInSection(2)
	assert.Equal(t, []int{25, 27}, blends)

	first := LessonsInSection(1)
	assert.Contains(t, first, 25)
	assert.Contains(t, first, 27)

	assert.Nil(t, LessonsInSection(18))
}

func TestExcludeReviews(t *testing.T) {
	got := ExcludeReviews([]int{42, 48, 49, 50, 53})
	assert.Equal(t, []int{42, 48, 50}, got)

	assert.Empty(t, ExcludeReviews([]int{49, 53}))
	assert.Empty(t, ExcludeReviews(nil))
}

func TestLessonName(t *testing.T) {
	assert.Equal(t, "m", LessonName(2))
	assert.Equal(t, "ch", LessonName(42))
	assert.Equal(t, "Review affixes 2", LessonName(128))
	assert.Empty(t, LessonName(129))
}
