package domain

import (
	"errors"
	"time"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardPromptEmpty is returned when a card has no prompt.
	ErrCardPromptEmpty = errors.New("card prompt cannot be empty")
)

// Card is an entry in the content catalog. The catalog owns ordering and
// categorisation; scheduling only ever sees the id.
type Card struct {
	ID         CardID    `json:"id"`
	Category   string    `json:"category"`
	Difficulty string    `json:"difficulty"`
	Prompt     string    `json:"prompt"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID.IsZero() {
		return ErrCardIDEmpty
	}
	if c.Prompt == "" {
		return ErrCardPromptEmpty
	}
	return nil
}

// CatalogFilter narrows the catalog. Empty fields match every card.
type CatalogFilter struct {
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Matches reports whether the card falls inside the filter scope.
func (f CatalogFilter) Matches(c Card) bool {
	if f.Category != "" && f.Category != c.Category {
		return false
	}
	if f.Difficulty != "" && f.Difficulty != c.Difficulty {
		return false
	}
	return true
}
