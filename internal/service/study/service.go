package study

import (
	"context"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
)

// NextCardRequest narrows the catalog and skips cards the client already has.
type NextCardRequest struct {
	Filter  domain.CatalogFilter
	Exclude []domain.CardID
}

// NextCard is the outcome of next-card selection. Done means nothing is left
// to study right now; the other fields are then zero.
type NextCard struct {
	Done     bool                  `json:"done"`
	Card     *domain.Card          `json:"card,omitempty"`
	Bucket   domain.Bucket         `json:"bucket,omitempty"`
	State    domain.MemoryState    `json:"state"`
	Mastery  domain.MasteryLevel   `json:"mastery,omitempty"`
	Previews []srs.IntervalPreview `json:"previews,omitempty"`
}

// ReviewSubmission is one answer from the learner.
type ReviewSubmission struct {
	Quality        domain.QualityRating
	Latency        time.Duration
	AnswerRevealed bool
}

// ReviewResult describes the state after a review was recorded.
type ReviewResult struct {
	CardID   domain.CardID       `json:"card_id"`
	Previous domain.MemoryState  `json:"previous"`
	State    domain.MemoryState  `json:"state"`
	Mastery  domain.MasteryLevel `json:"mastery"`
	Streak   domain.StudyStreak  `json:"streak"`
}

// CardPreview shows what each rating would do to a card without changing it.
type CardPreview struct {
	Card     *domain.Card          `json:"card"`
	State    domain.MemoryState    `json:"state"`
	Mastery  domain.MasteryLevel   `json:"mastery"`
	Previews []srs.IntervalPreview `json:"previews"`
	Reviews  []domain.ReviewRecord `json:"reviews"`
}

// DueSummary is the classified catalog for a learner.
type DueSummary struct {
	Buckets domain.DueBuckets     `json:"buckets"`
	Counts  map[domain.Bucket]int `json:"counts"`

	// Actionable counts the cards a session could present now.
	Actionable int `json:"actionable"`
}

// ProgressSummary aggregates a learner's standing across the whole catalog.
type ProgressSummary struct {
	TotalCards int                        `json:"total_cards"`
	Mastery    map[domain.MasteryLevel]int `json:"mastery"`
	Due        map[domain.Bucket]int       `json:"due"`
	Streak     int                        `json:"streak"`
	LastStudy  *time.Time                 `json:"last_study_day,omitempty"`
}

// Service is the study workflow for one learner at a time.
type Service interface {
	// NextCard picks the most urgent card: overdue, then due today, then new,
	// each in catalog order. Cards answered in the current session and the
	// request's exclusions are skipped.
	NextCard(ctx context.Context, learnerID domain.LearnerID, req NextCardRequest) (*NextCard, error)

	// SubmitReview schedules the card from the answer, appends it to the
	// history and advances the streak, all in one transaction.
	// Returns domain.ErrInvalidQuality or ErrCardNotFound.
	SubmitReview(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID, sub ReviewSubmission) (*ReviewResult, error)

	// Preview reports the interval each rating would give the card.
	// Returns ErrCardNotFound.
	Preview(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID) (*CardPreview, error)

	// ResetCard restores a card to its unreviewed defaults and drops its history.
	// Returns ErrCardNotFound or ErrNoProgress.
	ResetCard(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID) error

	// DueSummary classifies the (filtered) catalog.
	DueSummary(ctx context.Context, learnerID domain.LearnerID, filter domain.CatalogFilter) (*DueSummary, error)

	// ProgressSummary counts cards per mastery level and due bucket and
	// reports the active streak.
	ProgressSummary(ctx context.Context, learnerID domain.LearnerID) (*ProgressSummary, error)

	// DeleteAllProgress erases every trace of the learner's study history.
	DeleteAllProgress(ctx context.Context, learnerID domain.LearnerID) error

	// EndSession forgets the cards answered in the current session.
	EndSession(ctx context.Context, learnerID domain.LearnerID) error
}
