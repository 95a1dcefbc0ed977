package domain

// MasteryLevel is a coarse display label derived from a MemoryState.
// It never feeds back into scheduling.
type MasteryLevel string

// Mastery levels
const (
	MasteryNew      MasteryLevel = "new"
	MasteryLearning MasteryLevel = "learning"
	MasteryReview   MasteryLevel = "review"
	MasteryMastered MasteryLevel = "mastered"
)

// AllMasteryLevels lists the levels from least to most mastered.
var AllMasteryLevels = []MasteryLevel{MasteryNew, MasteryLearning, MasteryReview, MasteryMastered}
