package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CardID identifies a card in the content catalog.
type CardID string

// String returns the raw identifier.
func (id CardID) String() string {
	return string(id)
}

// IsZero reports whether the id is empty.
func (id CardID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// ParseCardID validates and converts a raw string into a CardID.
func ParseCardID(raw string) (CardID, error) {
	id := CardID(strings.TrimSpace(raw))
	if id.IsZero() {
		return "", fmt.Errorf("%w: empty card id", ErrInvalidID)
	}
	return id, nil
}

// ProgressID identifies a persisted progress record for one learner-card pair.
type ProgressID uuid.UUID

// NewProgressID generates a random ProgressID.
func NewProgressID() ProgressID {
	return ProgressID(uuid.New())
}

// String returns the canonical UUID form.
func (id ProgressID) String() string {
	return uuid.UUID(id).String()
}

// UUID returns the underlying uuid.UUID, used by storage drivers.
func (id ProgressID) UUID() uuid.UUID {
	return uuid.UUID(id)
}

// LearnerID identifies the learner that owns a set of progress records.
type LearnerID uuid.UUID

// NilLearnerID is the zero LearnerID.
var NilLearnerID = LearnerID(uuid.Nil)

// ParseLearnerID parses a UUID string into a LearnerID.
func ParseLearnerID(raw string) (LearnerID, error) {
	u, err := uuid.Parse(raw)
	if err != nil {
		return NilLearnerID, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	if u == uuid.Nil {
		return NilLearnerID, fmt.Errorf("%w: nil learner id", ErrInvalidID)
	}
	return LearnerID(u), nil
}

// String returns the canonical UUID form.
func (id LearnerID) String() string {
	return uuid.UUID(id).String()
}

// UUID returns the underlying uuid.UUID, used by storage drivers.
func (id LearnerID) UUID() uuid.UUID {
	return uuid.UUID(id)
}

// IsZero reports whether the id is the nil UUID.
func (id LearnerID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}
