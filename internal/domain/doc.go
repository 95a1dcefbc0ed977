// Package domain contains the core study entities: per-card memory states,
// review records, quality ratings, due buckets and the learner's study streak.
// It is independent of any storage or delivery mechanism.
package domain
