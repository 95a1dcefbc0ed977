package domain

import "fmt"

// QualityRating is the learner's self-assessed recall on the six-point SM-2 scale.
type QualityRating int

// Points on the recall scale.
const (
	// QualityBlackout is a complete failure to recall.
	QualityBlackout QualityRating = 0
	// QualityIncorrect is a wrong answer, remembered once the answer was shown.
	QualityIncorrect QualityRating = 1
	// QualityIncorrectFamiliar is a wrong answer where the correct one felt familiar.
	QualityIncorrectFamiliar QualityRating = 2
	// QualityCorrectDifficult is a correct answer recalled with serious difficulty.
	QualityCorrectDifficult QualityRating = 3
	// QualityCorrectHesitant is a correct answer after some hesitation.
	QualityCorrectHesitant QualityRating = 4
	// QualityPerfect is an instant, perfect recall.
	QualityPerfect QualityRating = 5
)

// PassingQuality is the lowest rating counted as a correct review.
const PassingQuality = QualityCorrectDifficult

// AllQualityRatings lists every valid rating in ascending order.
var AllQualityRatings = []QualityRating{
	QualityBlackout,
	QualityIncorrect,
	QualityIncorrectFamiliar,
	QualityCorrectDifficult,
	QualityCorrectHesitant,
	QualityPerfect,
}

// Validate returns ErrInvalidQuality when the rating is outside [0,5].
func (q QualityRating) Validate() error {
	if q < QualityBlackout || q > QualityPerfect {
		return fmt.Errorf("%w: got %d", ErrInvalidQuality, int(q))
	}
	return nil
}

// IsCorrect reports whether the rating counts as a successful recall.
func (q QualityRating) IsCorrect() bool {
	return q >= PassingQuality
}
