package domain

import (
	"time"
)

// MaxReviewHistory is the number of review records retained per card.
const MaxReviewHistory = 50

// ReviewRecord is an append-only log entry for a single review.
type ReviewRecord struct {
	ReviewedAt     time.Time     `json:"reviewed_at"`
	Quality        QualityRating `json:"quality"`
	Latency        time.Duration `json:"latency"`
	AnswerRevealed bool          `json:"answer_revealed"`
}

// NewReviewRecord builds a review record after validating the rating.
func NewReviewRecord(
	reviewedAt time.Time,
	quality QualityRating,
	latency time.Duration,
	revealed bool,
) (ReviewRecord, error) {
	if err := quality.Validate(); err != nil {
		return ReviewRecord{}, err
	}
	if latency < 0 {
		latency = 0
	}
	return ReviewRecord{
		ReviewedAt:     reviewedAt,
		Quality:        quality,
		Latency:        latency,
		AnswerRevealed: revealed,
	}, nil
}

// CardProgress is the persisted progress record for one learner and one card.
type CardProgress struct {
	ID        ProgressID     `json:"id"`
	LearnerID LearnerID      `json:"learner_id"`
	CardID    CardID         `json:"card_id"`
	State     MemoryState    `json:"state"`
	Reviews   []ReviewRecord `json:"reviews,omitempty"` // Most recent first
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewCardProgress creates a fresh progress record in its initial state.
func NewCardProgress(learnerID LearnerID, cardID CardID, now time.Time) *CardProgress {
	return &CardProgress{
		ID:        NewProgressID(),
		LearnerID: learnerID,
		CardID:    cardID,
		State:     NewMemoryState(now),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendReview prepends a record and trims the history to MaxReviewHistory.
func (p *CardProgress) AppendReview(r ReviewRecord) {
	reviews := make([]ReviewRecord, 0, len(p.Reviews)+1)
	reviews = append(reviews, r)
	reviews = append(reviews, p.Reviews...)
	if len(reviews) > MaxReviewHistory {
		reviews = reviews[:MaxReviewHistory]
	}
	p.Reviews = reviews
}
