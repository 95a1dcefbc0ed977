// Package study runs study sessions: it picks the next card for a learner,
// records review answers through the scheduler and reports progress.
package study
