package srs

import (
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// IntervalPreview is the hypothetical outcome of rating a card with Quality.
type IntervalPreview struct {
	Quality domain.QualityRating `json:"quality"`
	Days    int                  `json:"days"`
	Label   string               `json:"label"`
}

// Service defines the interface for SRS algorithm operations
type Service interface {
	// ComputeNextState returns the state that replaces state after a review
	// rated quality at time now. Returns domain.ErrInvalidQuality for ratings
	// outside [0,5].
	ComputeNextState(
		state domain.MemoryState,
		quality domain.QualityRating,
		now time.Time,
	) (domain.MemoryState, error)

	// PreviewIntervals maps each possible rating to the formatted interval it
	// would produce. Nothing is modified.
	PreviewIntervals(state domain.MemoryState, now time.Time) map[domain.QualityRating]string

	// Preview is PreviewIntervals with the raw day counts, ordered by rating.
	Preview(state domain.MemoryState, now time.Time) []IntervalPreview

	// MasteryLevel classifies the state for display.
	MasteryLevel(state domain.MemoryState) domain.MasteryLevel
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// Verify interface compliance at compile time
var _ Service = (*defaultService)(nil)

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// ComputeNextState implements Service.ComputeNextState
func (s *defaultService) ComputeNextState(
	state domain.MemoryState,
	quality domain.QualityRating,
	now time.Time,
) (domain.MemoryState, error) {
	if err := quality.Validate(); err != nil {
		return domain.MemoryState{}, err
	}

	return calculateNextState(state, quality, now, s.params), nil
}

// PreviewIntervals implements Service.PreviewIntervals
func (s *defaultService) PreviewIntervals(
	state domain.MemoryState,
	now time.Time,
) map[domain.QualityRating]string {
	previews := s.Preview(state, now)
	out := make(map[domain.QualityRating]string, len(previews))
	for _, p := range previews {
		out[p.Quality] = p.Label
	}
	return out
}

// Preview implements Service.Preview
func (s *defaultService) Preview(state domain.MemoryState, now time.Time) []IntervalPreview {
	previews := make([]IntervalPreview, 0, len(domain.AllQualityRatings))
	for _, q := range domain.AllQualityRatings {
		next := calculateNextState(state, q, now, s.params)
		previews = append(previews, IntervalPreview{
			Quality: q,
			Days:    next.Interval,
			Label:   FormatInterval(next.Interval),
		})
	}
	return previews
}

// MasteryLevel implements Service.MasteryLevel
func (s *defaultService) MasteryLevel(state domain.MemoryState) domain.MasteryLevel {
	return classifyMastery(state, s.params)
}
