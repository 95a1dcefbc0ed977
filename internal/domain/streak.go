package domain

import "time"

// StudyStreak counts consecutive calendar days with at least one review.
type StudyStreak struct {
	Current      int        `json:"current"`
	LastStudyDay *time.Time `json:"last_study_day,omitempty"` // Midnight of the last study day
}
