package srs

import (
	"math"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// calculateNewEaseFactor applies the SM-2 ease update for a quality rating.
//
// The adjustment is 0.1 - (5-q)*(0.08 + (5-q)*0.02): +0.10 for a perfect
// recall, 0 for quality 4, and increasingly negative below that. The result is
// floored at params.MinEaseFactor. It is applied on every review, correct or
// not, independent of the interval reset.
func calculateNewEaseFactor(
	currentEF float64,
	quality domain.QualityRating,
	params *Params,
) float64 {
	miss := float64(domain.QualityPerfect - quality)
	newEF := currentEF + (0.1 - miss*(0.08+miss*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the next interval in days.
//
// Parameters:
//   - previousInterval: the interval before this review
//   - repetitions: the consecutive-correct count after this review
//   - easeFactor: the ease factor after this review
//   - quality: the learner's rating
//   - params: configuration parameters for the SRS algorithm
//
// Algorithm behavior:
//   - Incorrect (quality < 3): reset to params.LapseInterval, whatever the history
//   - 1st correct repetition: params.FirstInterval
//   - 2nd correct repetition: params.SecondInterval
//   - Later repetitions: round(previousInterval * easeFactor), always longer than
//     the previous interval until params.MaxInterval is reached
func calculateNewInterval(
	previousInterval int,
	repetitions int,
	easeFactor float64,
	quality domain.QualityRating,
	params *Params,
) int {
	if !quality.IsCorrect() {
		return params.LapseInterval
	}

	switch repetitions {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	}

	if previousInterval >= params.MaxInterval {
		return params.MaxInterval
	}

	product := math.Round(float64(previousInterval) * easeFactor)
	if product >= float64(params.MaxInterval) {
		return params.MaxInterval
	}

	next := int(product)
	if next <= previousInterval {
		next = previousInterval + 1
	}
	return next
}

// calculateNextState returns the MemoryState that replaces state after a review.
// The input is never modified.
func calculateNextState(
	state domain.MemoryState,
	quality domain.QualityRating,
	now time.Time,
	params *Params,
) domain.MemoryState {
	next := domain.MemoryState{
		EaseFactor: calculateNewEaseFactor(state.EaseFactor, quality, params),
	}

	if quality.IsCorrect() {
		next.Repetitions = state.Repetitions + 1
	} else {
		next.Repetitions = 0
	}

	next.Interval = calculateNewInterval(
		state.Interval,
		next.Repetitions,
		next.EaseFactor,
		quality,
		params,
	)

	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.NextReviewAt = now.AddDate(0, 0, next.Interval)

	return next
}

// classifyMastery derives the display label for a state.
func classifyMastery(state domain.MemoryState, params *Params) domain.MasteryLevel {
	switch {
	case !state.Reviewed():
		return domain.MasteryNew
	case state.Interval > params.MasteryIntervalDays:
		return domain.MasteryMastered
	case state.Repetitions > 0:
		return domain.MasteryReview
	default:
		return domain.MasteryLearning
	}
}
