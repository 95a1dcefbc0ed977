package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/redact"
	"github.com/phrazzld/scry-study/internal/service/study"
)

// StudyHandler serves the study endpoints for the authenticated learner.
type StudyHandler struct {
	service study.Service
	logger  *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(service study.Service, logger *slog.Logger) *StudyHandler {
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("study service cannot be nil for StudyHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}
	return &StudyHandler{
		service: service,
		logger:  logger.With(slog.String("component", "study_handler")),
	}
}

// NextCard handles GET /api/cards/next. It answers 204 when the session is
// complete.
func (h *StudyHandler) NextCard(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := learnerFromRequest(w, r)
	if !ok {
		return
	}

	excluded, err := excludedFromQuery(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Too many excluded cards")
		return
	}

	next, err := h.service.NextCard(r.Context(), learnerID, study.NextCardRequest{
		Filter:  catalogFilterFromQuery(r),
		Exclude: excluded,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if next.Done {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("no cards left to study")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, nextCardToResponse(next))
}

// SubmitReview handles POST /api/cards/{id}/reviews.
func (h *StudyHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := learnerFromRequest(w, r)
	if !ok {
		return
	}
	cardID, ok := pathCardID(w, r)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", cardID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.service.SubmitReview(r.Context(), learnerID, cardID, study.ReviewSubmission{
		Quality:        domain.QualityRating(*req.Quality),
		Latency:        time.Duration(req.LatencyMs) * time.Millisecond,
		AnswerRevealed: req.AnswerRevealed,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("review submitted",
		slog.String("card_id", cardID.String()),
		slog.Int("quality", *req.Quality),
		slog.Int("interval", result.State.Interval))

	shared.RespondWithJSON(w, r, http.StatusOK, reviewResultToResponse(result))
}

// Preview handles GET /api/cards/{id}/preview.
func (h *StudyHandler) Preview(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := learnerFromRequest(w, r)
	if !ok {
		return
	}
	cardID, ok := pathCardID(w, r)
	if !ok {
		return
	}

	preview, err := h.service.Preview(r.Context(), learnerID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, previewToResponse(preview))
}

// ResetCard handles POST /api/cards/{id}/reset.
func (h *StudyHandler) ResetCard(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := learnerFromRequest(w, r)
	if !ok {
		return
	}
	cardID, ok := pathCardID(w, r)
	if !ok {
		return
	}

	if err := h.service.ResetCard(r.Context(), learnerID, cardID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DueSummary handles GET /api/due.
func (h *StudyHandler) DueSummary(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := learnerFromRequest(w, r)
	if !ok {
		return
	}

	summary, err := h.service.DueSummary(r.Context(), learnerID, catalogFilterFromQuery(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dueToResponse(summary))
}

// ProgressSummary handles GET /api/progress.
func (h *StudyHandler) ProgressSummary(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := learnerFromRequest(w, r)
	if !ok {
		return
	}

	summary, err := h.service.ProgressSummary(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(summary))
}

// DeleteProgress handles DELETE /api/progress.
func (h *StudyHandler) DeleteProgress(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := learnerFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAllProgress(r.Context(), learnerID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("learner progress deleted")
	w.WriteHeader(http.StatusNoContent)
}

// EndSession handles DELETE /api/session.
func (h *StudyHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := learnerFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.EndSession(r.Context(), learnerID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
