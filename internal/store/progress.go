package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// StreakUpdater computes the streak that results from studying at now.
type StreakUpdater func(current domain.StudyStreak, now time.Time) domain.StudyStreak

// ProgressStore persists per-learner scheduling state, review history and streaks.
type ProgressStore interface {
	// LoadAllStates returns the memory state of every card the learner has a
	// progress record for, keyed by card id. Cards never touched are absent.
	LoadAllStates(ctx context.Context, learnerID domain.LearnerID) (map[domain.CardID]domain.MemoryState, error)

	// LoadState returns the learner's progress for a card, including up to
	// MaxReviewHistory reviews, most recent first.
	// Returns ErrProgressNotFound if the learner has never touched the card.
	LoadState(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID) (*domain.CardProgress, error)

	// EnsureState returns the learner's progress for a card, creating it with
	// domain.NewMemoryState(now) when missing. Creation is atomic: concurrent
	// callers converge on one record. When the store is bound to a transaction
	// the returned row stays locked until the transaction ends, so read-modify-
	// write sequences on the same card serialize.
	EnsureState(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID, now time.Time) (*domain.CardProgress, error)

	// SaveState overwrites the memory state of an existing progress record.
	// Returns ErrProgressNotFound if the record does not exist and
	// ErrInvalidEntity if the state fails validation.
	SaveState(ctx context.Context, progressID domain.ProgressID, state domain.MemoryState, now time.Time) error

	// AppendReview adds a review to the record's history and discards all but
	// the MaxReviewHistory most recent entries.
	AppendReview(ctx context.Context, progressID domain.ProgressID, review domain.ReviewRecord) error

	// ListReviews returns up to limit reviews for a record, most recent first.
	ListReviews(ctx context.Context, progressID domain.ProgressID, limit int) ([]domain.ReviewRecord, error)

	// ResetState puts a card back to the default state and discards its history.
	// Returns ErrProgressNotFound if the learner has never touched the card.
	ResetState(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID, now time.Time) error

	// DeleteAllProgress removes every progress record, review and the streak
	// for the learner. Deleting nothing is not an error.
	DeleteAllProgress(ctx context.Context, learnerID domain.LearnerID) error

	// GetStreak returns the learner's streak; a learner who never studied has
	// the zero StudyStreak.
	GetStreak(ctx context.Context, learnerID domain.LearnerID) (domain.StudyStreak, error)

	// RecordStudyActivity applies update to the stored streak under a row lock
	// and persists the result, returning it.
	RecordStudyActivity(ctx context.Context, learnerID domain.LearnerID, now time.Time, update StreakUpdater) (domain.StudyStreak, error)

	// WithTx returns a ProgressStore that runs every statement in tx.
	WithTx(tx *sql.Tx) ProgressStore
}
