package due

import (
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// NextStreak applies a study activity at now to the streak:
//   - first activity ever: 1
//   - same calendar day: unchanged
//   - the following calendar day: +1
//   - any longer gap: back to 1
//
// Activity dated before the last study day leaves the streak unchanged.
func (c *Classifier) NextStreak(streak domain.StudyStreak, now time.Time) domain.StudyStreak {
	today := c.StartOfDay(now)

	if streak.LastStudyDay == nil || streak.Current < 1 {
		return domain.StudyStreak{Current: 1, LastStudyDay: &today}
	}

	last := c.StartOfDay(*streak.LastStudyDay)
	switch {
	case !today.After(last):
		return streak
	case last.AddDate(0, 0, 1).Equal(today):
		return domain.StudyStreak{Current: streak.Current + 1, LastStudyDay: &today}
	default:
		return domain.StudyStreak{Current: 1, LastStudyDay: &today}
	}
}

// ActiveStreak reports the streak as seen at now: a streak whose last study
// day is older than yesterday has lapsed and reads as zero.
func (c *Classifier) ActiveStreak(streak domain.StudyStreak, now time.Time) int {
	if streak.LastStudyDay == nil {
		return 0
	}
	yesterday := c.StartOfDay(now).AddDate(0, 0, -1)
	if c.StartOfDay(*streak.LastStudyDay).Before(yesterday) {
		return 0
	}
	return streak.Current
}
