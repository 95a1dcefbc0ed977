package study

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-study/internal/domain"
)

var (
	// ErrCardNotFound indicates that the card id is not in the catalog.
	// It matches domain.ErrUnknownCard.
	ErrCardNotFound = fmt.Errorf("card not found: %w", domain.ErrUnknownCard)

	// ErrNoProgress indicates that the learner has never studied the card.
	ErrNoProgress = errors.New("no progress for card")
)

// ServiceError wraps errors from the study service with the failing operation.
// Consumers match the cause with errors.Is/errors.As.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "next_card", "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}
