// Package due partitions a learner's cards into due buckets and picks the
// next card to present. Day boundaries are calendar days in the classifier's
// location, so a card due late yesterday and reviewed early today counts as
// overdue exactly once.
package due
