package due

import (
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// selectionOrder is the fixed priority used by SelectNext. Upcoming cards are
// never selected.
var selectionOrder = []domain.Bucket{
	domain.BucketOverdue,
	domain.BucketDueToday,
	domain.BucketNew,
}

// Classifier buckets cards by calendar day in a fixed location.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	loc *time.Location
}

// NewClassifier returns a Classifier using loc for day boundaries.
// A nil location means UTC.
func NewClassifier(loc *time.Location) *Classifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Classifier{loc: loc}
}

// StartOfDay returns midnight of the calendar day containing t.
func (c *Classifier) StartOfDay(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// BucketOf classifies a single state relative to now.
func (c *Classifier) BucketOf(state domain.MemoryState, now time.Time) domain.Bucket {
	today := c.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	switch next := state.NextReviewAt; {
	case next.Before(today):
		return domain.BucketOverdue
	case next.Before(tomorrow):
		return domain.BucketDueToday
	default:
		return domain.BucketUpcoming
	}
}

// Classify partitions every catalog id into exactly one bucket. Ids without a
// state are new. States whose ids are not in the catalog are ignored. Each
// bucket keeps catalog order and duplicate catalog ids are classified once.
func (c *Classifier) Classify(
	catalog []domain.CardID,
	states map[domain.CardID]domain.MemoryState,
	now time.Time,
) domain.DueBuckets {
	buckets := domain.DueBuckets{
		Overdue:  []domain.CardID{},
		DueToday: []domain.CardID{},
		New:      []domain.CardID{},
		Upcoming: []domain.CardID{},
	}
	seen := make(map[domain.CardID]struct{}, len(catalog))

	for _, id := range catalog {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		state, ok := states[id]
		if !ok {
			buckets.New = append(buckets.New, id)
			continue
		}

		switch c.BucketOf(state, now) {
		case domain.BucketOverdue:
			buckets.Overdue = append(buckets.Overdue, id)
		case domain.BucketDueToday:
			buckets.DueToday = append(buckets.DueToday, id)
		default:
			buckets.Upcoming = append(buckets.Upcoming, id)
		}
	}

	return buckets
}

// SelectNext returns the first eligible id from overdue, then due today, then
// new. Ids outside the catalog or in excluded are skipped. ok is false when
// nothing is left to study, which is the normal end of a session.
func SelectNext(
	catalog []domain.CardID,
	buckets domain.DueBuckets,
	excluded ...domain.CardID,
) (id domain.CardID, bucket domain.Bucket, ok bool) {
	inCatalog := make(map[domain.CardID]struct{}, len(catalog))
	for _, cid := range catalog {
		inCatalog[cid] = struct{}{}
	}
	skip := make(map[domain.CardID]struct{}, len(excluded))
	for _, cid := range excluded {
		skip[cid] = struct{}{}
	}

	for _, b := range selectionOrder {
		for _, cid := range buckets.Get(b) {
			if _, known := inCatalog[cid]; !known {
				continue
			}
			if _, excl := skip[cid]; excl {
				continue
			}
			return cid, b, true
		}
	}

	return "", "", false
}
