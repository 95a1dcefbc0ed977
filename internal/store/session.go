package store

import (
	"context"

	"github.com/phrazzld/scry-study/internal/domain"
)

// SessionStore remembers which cards a learner answered in the current study
// session so next-card selection can skip them. Entries expire on their own.
type SessionStore interface {
	// MarkAnswered records cardID as answered and extends the session lifetime.
	MarkAnswered(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID) error

	// Answered returns the cards answered in the live session, in no
	// particular order. An expired or missing session yields an empty slice.
	Answered(ctx context.Context, learnerID domain.LearnerID) ([]domain.CardID, error)

	// Clear ends the learner's session.
	Clear(ctx context.Context, learnerID domain.LearnerID) error
}
