package srs

import (
	"errors"

	"github.com/phrazzld/scry-study/internal/domain"
)

// ErrInvalidParams is returned when scheduling parameters are inconsistent.
var ErrInvalidParams = errors.New("invalid SRS parameters")

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Core limits
	MinEaseFactor float64

	// Interval ladder for the first correct repetitions after a reset
	FirstInterval  int
	SecondInterval int

	// Interval assigned after an incorrect review
	LapseInterval int

	// Interval (days) above which a card is reported as mastered
	MasteryIntervalDays int

	// Longest interval (days) the scheduler will assign
	MaxInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinEaseFactor       float64
	FirstInterval       int
	SecondInterval      int
	LapseInterval       int
	MasteryIntervalDays int
	MaxInterval         int
}

// DefaultMaxInterval caps scheduling at roughly a century.
const DefaultMaxInterval = 36500

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:       domain.MinEaseFactor,
		FirstInterval:       1,
		SecondInterval:      6,
		LapseInterval:       1,
		MasteryIntervalDays: 21,
		MaxInterval:         DefaultMaxInterval,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero values in the config keep the defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}
	if config.MasteryIntervalDays > 0 {
		params.MasteryIntervalDays = config.MasteryIntervalDays
	}
	if config.MaxInterval > 0 {
		params.MaxInterval = config.MaxInterval
	}

	return params
}

// Validate checks that the parameters can drive the scheduler safely.
func (p *Params) Validate() error {
	if p == nil {
		return ErrInvalidParams
	}
	// An ease floor under the domain minimum would let intervals stall.
	if p.MinEaseFactor < domain.MinEaseFactor {
		return ErrInvalidParams
	}
	if p.FirstInterval < 1 || p.SecondInterval < p.FirstInterval || p.LapseInterval < 1 {
		return ErrInvalidParams
	}
	if p.MasteryIntervalDays < 1 {
		return ErrInvalidParams
	}
	if p.MaxInterval < p.SecondInterval || p.MaxInterval < p.LapseInterval || p.MaxInterval > maxFormattableDays {
		return ErrInvalidParams
	}
	return nil
}
