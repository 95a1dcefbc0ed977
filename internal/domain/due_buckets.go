package domain

// Bucket classifies a card's scheduling status at a point in time.
type Bucket string

// Due buckets, in selection priority order.
const (
	BucketOverdue  Bucket = "overdue"
	BucketDueToday Bucket = "due_today"
	BucketNew      Bucket = "new"
	BucketUpcoming Bucket = "upcoming"
)

// DueBuckets partitions card ids into four disjoint, ordered sets.
type DueBuckets struct {
	Overdue  []CardID `json:"overdue"`
	DueToday []CardID `json:"due_today"`
	New      []CardID `json:"new"`
	Upcoming []CardID `json:"upcoming"`
}

// Get returns the ids held in the given bucket.
func (b DueBuckets) Get(bucket Bucket) []CardID {
	switch bucket {
	case BucketOverdue:
		return b.Overdue
	case BucketDueToday:
		return b.DueToday
	case BucketNew:
		return b.New
	case BucketUpcoming:
		return b.Upcoming
	default:
		return nil
	}
}

// Len returns the total number of classified ids.
func (b DueBuckets) Len() int {
	return len(b.Overdue) + len(b.DueToday) + len(b.New) + len(b.Upcoming)
}

// Actionable returns the number of ids that could be presented now.
func (b DueBuckets) Actionable() int {
	return len(b.Overdue) + len(b.DueToday) + len(b.New)
}
