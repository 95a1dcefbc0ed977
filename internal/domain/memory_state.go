package domain

import (
	"errors"
	"time"
)

// Scheduling defaults shared by the scheduler and the persistence layer.
const (
	// DefaultEaseFactor is the ease factor assigned to a card on first access.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor for the ease factor. Lower values would
	// collapse interval growth.
	MinEaseFactor = 1.3
)

// Validation errors for MemoryState
var (
	ErrInvalidEaseFactor  = errors.New("ease factor must be at least 1.3")
	ErrInvalidInterval    = errors.New("interval must be greater than or equal to 0")
	ErrInvalidRepetitions = errors.New("repetitions must be greater than or equal to 0")
	ErrInconsistentState  = errors.New("repetitions must be 0 when interval is 0")
)

// MemoryState is the durable scheduling state for one learner-card pair.
// It is replaced, never mutated in place, after every review.
type MemoryState struct {
	EaseFactor     float64    `json:"ease_factor"`
	Interval       int        `json:"interval"`    // Days until the next review
	Repetitions    int        `json:"repetitions"` // Consecutive correct reviews
	NextReviewAt   time.Time  `json:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"` // Nil until the first review
}

// NewMemoryState returns the state of a card that has never been reviewed.
// The card is due immediately.
func NewMemoryState(now time.Time) MemoryState {
	return MemoryState{
		EaseFactor:   DefaultEaseFactor,
		Interval:     0,
		Repetitions:  0,
		NextReviewAt: now,
	}
}

// Reviewed reports whether the card has been reviewed at least once.
func (s MemoryState) Reviewed() bool {
	return s.LastReviewedAt != nil
}

// Validate checks the state invariants.
func (s MemoryState) Validate() error {
	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}
	if s.Interval < 0 {
		return ErrInvalidInterval
	}
	if s.Repetitions < 0 {
		return ErrInvalidRepetitions
	}
	if s.Interval == 0 && s.Repetitions != 0 {
		return ErrInconsistentState
	}
	return nil
}
