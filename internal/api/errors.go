package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/service/auth"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/store"
)

// errUnauthenticated is used when a protected handler runs without a learner
// in the request context.
var errUnauthenticated = errors.New("learner not authenticated")

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, errUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, study.ErrCardNotFound),
		errors.Is(err, study.ErrNoProgress),
		errors.Is(err, domain.ErrUnknownCard),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrInvalidQuality),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, errUnauthenticated):
		return "Learner not authenticated"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, study.ErrCardNotFound),
		errors.Is(err, domain.ErrUnknownCard),
		errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, study.ErrNoProgress),
		errors.Is(err, store.ErrProgressNotFound):
		return "No progress recorded for this card"

	case errors.Is(err, domain.ErrInvalidQuality):
		return "Quality must be an integer between 0 and 5"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid card ID"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		var serviceErr *study.ServiceError
		if errors.As(err, &serviceErr) {
			return "Failed to " + operationLabel(serviceErr.Operation)
		}
		return "An unexpected error occurred"
	}
}

func operationLabel(op string) string {
	switch op {
	case "next_card":
		return "select the next card"
	case "submit_review":
		return "record the review"
	case "preview":
		return "preview the card"
	case "reset_card":
		return "reset the card"
	case "due_summary":
		return "load due cards"
	case "progress_summary":
		return "load progress"
	case "delete_progress":
		return "delete progress"
	case "end_session":
		return "end the session"
	default:
		return "complete the request"
	}
}

// SanitizeValidationError turns validator output into a short message that
// names the offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted details. A non-empty message replaces the default safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
