package srs

import (
	"testing"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  float64
		quality  domain.QualityRating
		expected float64
	}{
		{name: "perfect recall raises ease", current: 2.5, quality: 5, expected: 2.6},
		{name: "hesitant recall keeps ease", current: 2.5, quality: 4, expected: 2.5},
		{name: "difficult recall lowers ease", current: 2.5, quality: 3, expected: 2.36},
		{name: "familiar miss lowers ease", current: 2.5, quality: 2, expected: 2.18},
		{name: "incorrect lowers ease", current: 2.5, quality: 1, expected: 1.96},
		{name: "blackout lowers ease", current: 2.5, quality: 0, expected: 1.7},
		{name: "floor is enforced", current: 1.4, quality: 0, expected: 1.3},
		{name: "floor holds at floor", current: 1.3, quality: 1, expected: 1.3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewEaseFactor(tc.current, tc.quality, params)
			if diff := got - tc.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Expected ease factor %.4f, got %.4f", tc.expected, got)
			}
		})
	}
}

func TestCalculateNewInterval(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name        string
		previous    int
		repetitions int
		ef          float64
		quality     domain.QualityRating
		expected    int
	}{
		{name: "incorrect resets to one day", previous: 40, repetitions: 0, ef: 2.5, quality: 2, expected: 1},
		{name: "first correct repetition", previous: 0, repetitions: 1, ef: 2.6, quality: 5, expected: 1},
		{name: "second correct repetition", previous: 1, repetitions: 2, ef: 2.5, quality: 4, expected: 6},
		{name: "third repetition multiplies", previous: 6, repetitions: 3, ef: 2.5, quality: 4, expected: 15},
		{name: "product is rounded", previous: 15, repetitions: 4, ef: 2.36, quality: 3, expected: 35},
		{name: "never shrinks at the ease floor", previous: 1, repetitions: 3, ef: 1.3, quality: 3, expected: 2},
		{name: "product is capped", previous: 20000, repetitions: 9, ef: 2.6, quality: 5, expected: DefaultMaxInterval},
		{name: "cap holds at cap", previous: DefaultMaxInterval, repetitions: 10, ef: 2.6, quality: 5, expected: DefaultMaxInterval},
		{name: "oversized stored interval is pulled to cap", previous: 1 << 40, repetitions: 12, ef: 2.6, quality: 5, expected: DefaultMaxInterval},
		{name: "growth below the cap still increases", previous: DefaultMaxInterval - 1, repetitions: 10, ef: 1.3, quality: 3, expected: DefaultMaxInterval},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewInterval(tc.previous, tc.repetitions, tc.ef, tc.quality, params)
			if got != tc.expected {
				t.Errorf("Expected interval %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestCalculateNextStateDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	lastReview := now.AddDate(0, 0, -6)
	state := domain.MemoryState{
		EaseFactor:     2.5,
		Interval:       6,
		Repetitions:    2,
		NextReviewAt:   now,
		LastReviewedAt: &lastReview,
	}
	original := state

	next := calculateNextState(state, domain.QualityCorrectHesitant, now, params)

	if state != original {
		t.Errorf("Expected input state to be unchanged, got %+v", state)
	}
	if next.LastReviewedAt == state.LastReviewedAt {
		t.Error("Expected a fresh LastReviewedAt pointer")
	}
}

func TestClassifyMastery(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	reviewed := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		state    domain.MemoryState
		expected domain.MasteryLevel
	}{
		{
			name:     "never reviewed",
			state:    domain.NewMemoryState(reviewed),
			expected: domain.MasteryNew,
		},
		{
			name:     "just lapsed",
			state:    domain.MemoryState{EaseFactor: 2.0, Interval: 1, Repetitions: 0, LastReviewedAt: &reviewed},
			expected: domain.MasteryLearning,
		},
		{
			name:     "reviewing",
			state:    domain.MemoryState{EaseFactor: 2.5, Interval: 21, Repetitions: 4, LastReviewedAt: &reviewed},
			expected: domain.MasteryReview,
		},
		{
			name:     "mastered past three weeks",
			state:    domain.MemoryState{EaseFactor: 2.5, Interval: 22, Repetitions: 5, LastReviewedAt: &reviewed},
			expected: domain.MasteryMastered,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyMastery(tc.state, params); got != tc.expected {
				t.Errorf("Expected mastery %q, got %q", tc.expected, got)
			}
		})
	}
}
