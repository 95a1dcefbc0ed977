package api

import (
	"strconv"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/service/study"
)

// SubmitReviewRequest is the body of POST /api/cards/{id}/reviews.
// Quality is a pointer so that an explicit 0 (blackout) is distinguishable
// from a missing field; its range is checked by the scheduler.
type SubmitReviewRequest struct {
	Quality        *int  `json:"quality"         validate:"required"`
	LatencyMs      int64 `json:"latency_ms"      validate:"min=0"`
	AnswerRevealed bool  `json:"answer_revealed"`
}

// CardResponse is the public view of a catalog card.
type CardResponse struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Prompt     string `json:"prompt"`
	Position   int    `json:"position"`
}

// StateResponse is the public view of a memory state.
type StateResponse struct {
	EaseFactor     float64    `json:"ease_factor"`
	Interval       int        `json:"interval"`
	Repetitions    int        `json:"repetitions"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
}

// NextCardResponse is the body of GET /api/cards/next.
type NextCardResponse struct {
	Card      CardResponse          `json:"card"`
	Bucket    domain.Bucket         `json:"bucket"`
	State     StateResponse         `json:"state"`
	Mastery   domain.MasteryLevel   `json:"mastery"`
	Previews  []srs.IntervalPreview `json:"previews"`
	Intervals map[string]string     `json:"intervals"`
}

// ReviewResponse is the body of POST /api/cards/{id}/reviews.
type ReviewResponse struct {
	CardID       string              `json:"card_id"`
	State        StateResponse       `json:"state"`
	Mastery      domain.MasteryLevel `json:"mastery"`
	NextReviewIn string              `json:"next_review_in"`
	Streak       int                 `json:"streak"`
}

// ReviewRecordResponse is one entry of a card's review history.
type ReviewRecordResponse struct {
	ReviewedAt     time.Time `json:"reviewed_at"`
	Quality        int       `json:"quality"`
	LatencyMs      int64     `json:"latency_ms"`
	AnswerRevealed bool      `json:"answer_revealed"`
}

// PreviewResponse is the body of GET /api/cards/{id}/preview.
type PreviewResponse struct {
	Card      CardResponse           `json:"card"`
	State     StateResponse          `json:"state"`
	Mastery   domain.MasteryLevel    `json:"mastery"`
	Previews  []srs.IntervalPreview  `json:"previews"`
	Intervals map[string]string      `json:"intervals"`
	Reviews   []ReviewRecordResponse `json:"reviews"`
}

// DueResponse is the body of GET /api/due.
type DueResponse struct {
	Overdue  []domain.CardID       `json:"overdue"`
	DueToday []domain.CardID       `json:"due_today"`
	New      []domain.CardID       `json:"new"`
	Upcoming []domain.CardID       `json:"upcoming"`
	Counts   map[domain.Bucket]int `json:"counts"`

	// Actionable is the number of cards next-card selection can still offer.
	Actionable int `json:"actionable"`
}

// ProgressResponse is the body of GET /api/progress.
type ProgressResponse struct {
	TotalCards   int                         `json:"total_cards"`
	Mastery      map[domain.MasteryLevel]int `json:"mastery"`
	Due          map[domain.Bucket]int       `json:"due"`
	Streak       int                         `json:"streak"`
	LastStudyDay *time.Time                  `json:"last_study_day,omitempty"`
}

func cardToResponse(c *domain.Card) CardResponse {
	if c == nil {
		return CardResponse{}
	}
	return CardResponse{
		ID:         c.ID.String(),
		Category:   c.Category,
		Difficulty: c.Difficulty,
		Prompt:     c.Prompt,
		Position:   c.Position,
	}
}

func stateToResponse(s domain.MemoryState) StateResponse {
	return StateResponse{
		EaseFactor:     s.EaseFactor,
		Interval:       s.Interval,
		Repetitions:    s.Repetitions,
		NextReviewAt:   s.NextReviewAt,
		LastReviewedAt: s.LastReviewedAt,
	}
}

// intervalLabels keys each preview label by its quality rating.
func intervalLabels(previews []srs.IntervalPreview) map[string]string {
	out := make(map[string]string, len(previews))
	for _, p := range previews {
		out[strconv.Itoa(int(p.Quality))] = p.Label
	}
	return out
}

func nextCardToResponse(n *study.NextCard) NextCardResponse {
	return NextCardResponse{
		Card:      cardToResponse(n.Card),
		Bucket:    n.Bucket,
		State:     stateToResponse(n.State),
		Mastery:   n.Mastery,
		Previews:  n.Previews,
		Intervals: intervalLabels(n.Previews),
	}
}

func reviewResultToResponse(r *study.ReviewResult) ReviewResponse {
	return ReviewResponse{
		CardID:       r.CardID.String(),
		State:        stateToResponse(r.State),
		Mastery:      r.Mastery,
		NextReviewIn: srs.FormatInterval(r.State.Interval),
		Streak:       r.Streak.Current,
	}
}

func previewToResponse(p *study.CardPreview) PreviewResponse {
	reviews := make([]ReviewRecordResponse, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		reviews = append(reviews, ReviewRecordResponse{
			ReviewedAt:     r.ReviewedAt,
			Quality:        int(r.Quality),
			LatencyMs:      r.Latency.Milliseconds(),
			AnswerRevealed: r.AnswerRevealed,
		})
	}
	return PreviewResponse{
		Card:      cardToResponse(p.Card),
		State:     stateToResponse(p.State),
		Mastery:   p.Mastery,
		Previews:  p.Previews,
		Intervals: intervalLabels(p.Previews),
		Reviews:   reviews,
	}
}

func dueToResponse(d *study.DueSummary) DueResponse {
	return DueResponse{
		Overdue:    nonNil(d.Buckets.Overdue),
		DueToday:   nonNil(d.Buckets.DueToday),
		New:        nonNil(d.Buckets.New),
		Upcoming:   nonNil(d.Buckets.Upcoming),
		Counts:     d.Counts,
		Actionable: d.Actionable,
	}
}

func progressToResponse(p *study.ProgressSummary) ProgressResponse {
	return ProgressResponse{
		TotalCards:   p.TotalCards,
		Mastery:      p.Mastery,
		Due:          p.Due,
		Streak:       p.Streak,
		LastStudyDay: p.LastStudy,
	}
}

func nonNil(ids []domain.CardID) []domain.CardID {
	if ids == nil {
		return []domain.CardID{}
	}
	return ids
}
