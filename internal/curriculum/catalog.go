package curriculum

// The UFLI curriculum is fixed: 128 numbered lessons grouped into 17 skill
// sections, with a known set of cumulative review lessons. The catalog is
// built once at package init and is immutable for the process lifetime.

// TotalLessons is the number of lessons in the curriculum.
const TotalLessons = 128

// FoundationalMax is the highest lesson number counted as foundational.
const FoundationalMax = 34

// reviewLessonNumbers lists lessons that assess retention of prior material
// rather than new content.
var reviewLessonNumbers = []int{
	35, 36, 37, 39, 40, 41, 49, 53, 57, 59, 62, 71, 76, 79, 83, 88, 92, 97, 102, 104, 105, 106, 128,
}

var reviewSet map[int]struct{}

// Section is one of the 17 topical groupings of lessons.
type Section struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Lessons []int  `json:"lessons"`
}

var sections = []Section{
	{ID: 1, Name: "Single Consonants & Short Vowels", Lessons: lessonRange(1, 34)},
	{ID: 2, Name: "Blends", Lessons: []int{25, 27}},
	{ID: 3, Name: "Alphabet Review", Lessons: lessonRange(35, 41)},
	{ID: 4, Name: "Digraphs", Lessons: lessonRange(42, 53)},
	{ID: 5, Name: "VCE (Vowel-Consonant-E)", Lessons: lessonRange(54, 62)},
	{ID: 6, Name: "Reading Longer Words", Lessons: lessonRange(63, 68)},
	{ID: 7, Name: "Ending Spelling Patterns", Lessons: lessonRange(69, 76)},
	{ID: 8, Name: "R-Controlled Vowels", Lessons: lessonRange(77, 83)},
	{ID: 9, Name: "Long Vowel Teams", Lessons: lessonRange(84, 88)},
	{ID: 10, Name: "Other Vowel Teams", Lessons: lessonRange(89, 94)},
	{ID: 11, Name: "Diphthongs", Lessons: lessonRange(95, 97)},
	{ID: 12, Name: "Silent Letters", Lessons: []int{98}},
	{ID: 13, Name: "Suffixes & Prefixes", Lessons: lessonRange(99, 106)},
	{ID: 14, Name: "Suffix Spelling Changes", Lessons: lessonRange(107, 110)},
	{ID: 15, Name: "Low Frequency Spellings", Lessons: lessonRange(111, 118)},
	{ID: 16, Name: "Additional Affixes", Lessons: lessonRange(119, 126)},
	{ID: 17, Name: "Affixes Review 2", Lessons: []int{127, 128}},
}

var lessonNames = map[int]string{
	1: "a/ā/", 2: "m", 3: "t", 4: "s", 5: "i/ī/", 6: "f", 7: "d", 8: "r",
	9: "o/ō/", 10: "g", 11: "l", 12: "h", 13: "u/ū/", 14: "c", 15: "b", 16: "n",
	17: "k", 18: "e/ē/", 19: "v", 20: "y", 21: "w", 22: "j", 23: "p", 24: "x",
	25: "blends (initial)", 26: "z", 27: "blends (final)", 28: "qu", 29: "-ck",
	30: "-ll, -ss", 31: "-zz, -ff", 32: "-ng", 33: "-nk", 34: "Review 1-33",
	35: "Review a", 36: "Review i", 37: "Review o", 38: "Review u", 39: "Review e",
	40: "Review 35-39", 41: "Review all vowels", 42: "ch", 43: "sh", 44: "th",
	45: "wh", 46: "-tch", 47: "ph", 48: "wr", 49: "Review digraphs", 50: "kn",
	51: "gn", 52: "mb", 53: "Review 50-52", 54: "a_e", 55: "i_e", 56: "o_e",
	57: "Review 54-56", 58: "u_e", 59: "Review 54-58", 60: "e_e", 61: "Soft c",
	62: "Soft g", 63: "Compound words", 64: "Syllable division (VC/CV)",
	65: "Syllable division (V/CV)", 66: "Syllable division (VC/V)",
	67: "Syllable division (review)", 68: "Open syllables", 69: "-ed (/ed/)",
	70: "-ed (/d/)", 71: "-ed (/t/)", 72: "-ing", 73: "-er, -est", 74: "-s, -es",
	75: "-ful, -less", 76: "Review suffixes", 77: "ar", 78: "or",
	79: "Review ar, or", 80: "er", 81: "ir", 82: "ur", 83: "Review er, ir, ur",
	84: "ai", 85: "ay", 86: "ee", 87: "ea", 88: "Review vowel teams", 89: "igh",
	90: "ie", 91: "oa", 92: "ow (/ō/)", 93: "ew", 94: "ue", 95: "oi", 96: "oy",
	97: "Review diphthongs", 98: "Silent letters", 99: "Prefixes un-, re-",
	100: "Prefixes pre-, mis-", 101: "Prefixes dis-, non-", 102: "Review prefixes",
	103: "Suffixes -ly, -y", 104: "Suffixes -ment, -ness", 105: "Suffixes -able, -ible",
	106: "Review suffixes 2", 107: "Doubling rule", 108: "Drop e rule",
	109: "Change y rule", 110: "Review spelling rules", 111: "oo (/o͞o/)",
	112: "oo (/o͝o/)", 113: "ou", 114: "ow (/ou/)", 115: "au, aw", 116: "al, all",
	117: "wa, qua", 118: "Review 111-117", 119: "-tion", 120: "-sion",
	121: "-ture, -sure", 122: "-cial, -tial", 123: "-ous, -eous",
	124: "-ible, -able (advanced)", 125: "Greek roots", 126: "Latin roots",
	127: "Review affixes 1", 128: "Review affixes 2",
}

func init() {
	reviewSet = make(map[int]struct{}, len(reviewLessonNumbers))
	for _, n := range reviewLessonNumbers {
		reviewSet[n] = struct{}{}
	}
}

// IsReview reports whether the lesson is a cumulative review lesson.
func IsReview(lessonNumber int) bool {
	_, ok := reviewSet[lessonNumber]
	return ok
}

// IsFoundational reports whether the lesson belongs to the universal baseline.
func IsFoundational(lessonNumber int) bool {
	return lessonNumber >= 1 && lessonNumber <= FoundationalMax
}

// FoundationalLessons returns lesson numbers 1..34.
func FoundationalLessons() []int {
	return lessonRange(1, FoundationalMax)
}

// ReviewLessons returns the review lesson numbers in ascending order.
func ReviewLessons() []int {
	out := make([]int, len(reviewLessonNumbers))
	copy(out, reviewLessonNumbers)
	return out
}

// Sections returns all 17 skill sections in order.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// LessonsInSection returns the ordered lesson numbers for a section, or nil
// for an unknown section ID.
func LessonsInSection(sectionID int) []int {
	for _, s := range sections {
		if s.ID == sectionID {
			out := make([]int, len(s.Lessons))
			copy(out, s.Lessons)
			return out
		}
	}
	return nil
}

// LessonName returns the short name for a lesson number.
func LessonName(lessonNumber int) string {
	return lessonNames[lessonNumber]
}

// ExcludeReviews returns the subset of lessons that are not review lessons,
// preserving order.
func ExcludeReviews(lessons []int) []int {
	out := make([]int, 0, len(lessons))
	for _, n := range lessons {
		if !IsReview(n) {
			out = append(out, n)
		}
	}
	return out
}

func lessonRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out
}
