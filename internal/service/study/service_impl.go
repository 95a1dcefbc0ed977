package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/due"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

var _ Service = (*studyService)(nil)

type studyService struct {
	db         *sql.DB
	progress   store.ProgressStore
	catalog    store.CatalogStore
	sessions   store.SessionStore // nil when session tracking is disabled
	scheduler  srs.Service
	classifier *due.Classifier
	now        func() time.Time
	logger     *slog.Logger
}

// Option customizes a Service.
type Option func(*studyService)

// WithSessionStore enables exclusion of cards answered in the current session.
func WithSessionStore(sessions store.SessionStore) Option {
	return func(s *studyService) {
		s.sessions = sessions
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *studyService) {
		s.now = now
	}
}

// NewService creates the study service. db is used to open the transactions
// that the stores join through WithTx.
func NewService(
	db *sql.DB,
	progress store.ProgressStore,
	catalog store.CatalogStore,
	scheduler srs.Service,
	classifier *due.Classifier,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if progress == nil {
		panic("progress store cannot be nil")
	}
	if catalog == nil {
		panic("catalog store cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if classifier == nil {
		classifier = due.NewClassifier(time.UTC)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &studyService{
		db:         db,
		progress:   progress,
		catalog:    catalog,
		scheduler:  scheduler,
		classifier: classifier,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With(slog.String("component", "study_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *studyService) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// NextCard implements Service.
func (s *studyService) NextCard(
	ctx context.Context,
	learnerID domain.LearnerID,
	req NextCardRequest,
) (*NextCard, error) {
	log := s.log(ctx)
	now := s.now()

	catalog, states, err := s.load(ctx, learnerID, req.Filter)
	if err != nil {
		return nil, newServiceError("next_card", "failed to load study data", err)
	}

	excluded := make([]domain.CardID, 0, len(req.Exclude))
	excluded = append(excluded, req.Exclude...)
	excluded = append(excluded, s.answeredInSession(ctx, learnerID)...)

	buckets := s.classifier.Classify(catalog, states, now)
	id, bucket, ok := due.SelectNext(catalog, buckets, excluded...)
	if !ok {
		log.Debug("session complete",
			slog.String("learner_id", learnerID.String()),
			slog.Int("actionable", buckets.Actionable()),
			slog.Int("excluded", len(excluded)),
			slog.Int("upcoming", len(buckets.Upcoming)))
		return &NextCard{Done: true}, nil
	}

	card, err := s.catalog.GetCard(ctx, id)
	if err != nil {
		return nil, newServiceError("next_card", "failed to load selected card", err)
	}

	state, known := states[id]
	if !known {
		state = domain.NewMemoryState(now)
	}

	log.Debug("selected next card",
		slog.String("learner_id", learnerID.String()),
		slog.String("card_id", id.String()),
		slog.String("bucket", string(bucket)))

	return &NextCard{
		Card:     card,
		Bucket:   bucket,
		State:    state,
		Mastery:  s.scheduler.MasteryLevel(state),
		Previews: s.scheduler.Preview(state, now),
	}, nil
}

// SubmitReview implements Service.
func (s *studyService) SubmitReview(
	ctx context.Context,
	learnerID domain.LearnerID,
	cardID domain.CardID,
	sub ReviewSubmission,
) (*ReviewResult, error) {
	log := s.log(ctx)

	if err := sub.Quality.Validate(); err != nil {
		log.Warn("invalid review quality",
			slog.String("learner_id", learnerID.String()),
			slog.String("card_id", cardID.String()),
			slog.Int("quality", int(sub.Quality)))
		return nil, err
	}

	now := s.now()
	var result *ReviewResult

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		catalog := s.catalog.WithTx(tx)
		progress := s.progress.WithTx(tx)

		if _, err := catalog.GetCard(ctx, cardID); err != nil {
			if errors.Is(err, store.ErrCardNotFound) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to get card: %w", err)
		}

		current, err := progress.EnsureState(ctx, learnerID, cardID, now)
		if err != nil {
			if errors.Is(err, store.ErrCardNotFound) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to load progress: %w", err)
		}

		next, err := s.scheduler.ComputeNextState(current.State, sub.Quality, now)
		if err != nil {
			return fmt.Errorf("failed to compute next state: %w", err)
		}
		if err := progress.SaveState(ctx, current.ID, next, now); err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}

		review, err := domain.NewReviewRecord(now, sub.Quality, sub.Latency, sub.AnswerRevealed)
		if err != nil {
			return err
		}
		if err := progress.AppendReview(ctx, current.ID, review); err != nil {
			return fmt.Errorf("failed to append review: %w", err)
		}

		streak, err := progress.RecordStudyActivity(ctx, learnerID, now, s.classifier.NextStreak)
		if err != nil {
			return fmt.Errorf("failed to record study activity: %w", err)
		}

		result = &ReviewResult{
			CardID:   cardID,
			Previous: current.State,
			State:    next,
			Mastery:  s.scheduler.MasteryLevel(next),
			Streak:   streak,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, domain.ErrInvalidQuality) {
			return nil, err
		}
		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("card_id", cardID.String()))
		return nil, newServiceError("submit_review", "failed to record review", err)
	}

	s.markAnswered(ctx, learnerID, cardID)

	log.Debug("review recorded",
		slog.String("learner_id", learnerID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("quality", int(sub.Quality)),
		slog.Float64("ease_factor", result.State.EaseFactor),
		slog.Int("interval", result.State.Interval),
		slog.Time("next_review_at", result.State.NextReviewAt))

	return result, nil
}

// Preview implements Service.
func (s *studyService) Preview(
	ctx context.Context,
	learnerID domain.LearnerID,
	cardID domain.CardID,
) (*CardPreview, error) {
	now := s.now()

	card, err := s.catalog.GetCard(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, newServiceError("preview", "failed to get card", err)
	}

	state := domain.NewMemoryState(now)
	reviews := []domain.ReviewRecord{}
	p, err := s.progress.LoadState(ctx, learnerID, cardID)
	switch {
	case err == nil:
		state = p.State
		if p.Reviews != nil {
			reviews = p.Reviews
		}
	case errors.Is(err, store.ErrProgressNotFound):
	default:
		return nil, newServiceError("preview", "failed to load progress", err)
	}

	return &CardPreview{
		Card:     card,
		State:    state,
		Mastery:  s.scheduler.MasteryLevel(state),
		Previews: s.scheduler.Preview(state, now),
		Reviews:  reviews,
	}, nil
}

// ResetCard implements Service.
func (s *studyService) ResetCard(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID) error {
	if _, err := s.catalog.GetCard(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return ErrCardNotFound
		}
		return newServiceError("reset_card", "failed to get card", err)
	}

	now := s.now()
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.progress.WithTx(tx).ResetState(ctx, learnerID, cardID, now)
	})
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			return ErrNoProgress
		}
		return newServiceError("reset_card", "failed to reset progress", err)
	}

	s.log(ctx).Info("card progress reset",
		slog.String("learner_id", learnerID.String()),
		slog.String("card_id", cardID.String()))
	return nil
}

// DueSummary implements Service.
func (s *studyService) DueSummary(
	ctx context.Context,
	learnerID domain.LearnerID,
	filter domain.CatalogFilter,
) (*DueSummary, error) {
	catalog, states, err := s.load(ctx, learnerID, filter)
	if err != nil {
		return nil, newServiceError("due_summary", "failed to load study data", err)
	}

	buckets := s.classifier.Classify(catalog, states, s.now())
	return &DueSummary{
		Buckets:    buckets,
		Counts:     bucketCounts(buckets),
		Actionable: buckets.Actionable(),
	}, nil
}

// ProgressSummary implements Service.
func (s *studyService) ProgressSummary(ctx context.Context, learnerID domain.LearnerID) (*ProgressSummary, error) {
	now := s.now()

	catalog, states, err := s.load(ctx, learnerID, domain.CatalogFilter{})
	if err != nil {
		return nil, newServiceError("progress_summary", "failed to load study data", err)
	}
	streak, err := s.progress.GetStreak(ctx, learnerID)
	if err != nil {
		return nil, newServiceError("progress_summary", "failed to load streak", err)
	}

	buckets := s.classifier.Classify(catalog, states, now)

	mastery := make(map[domain.MasteryLevel]int, len(domain.AllMasteryLevels))
	for _, level := range domain.AllMasteryLevels {
		mastery[level] = 0
	}
	total := 0
	for _, ids := range [][]domain.CardID{buckets.Overdue, buckets.DueToday, buckets.New, buckets.Upcoming} {
		for _, id := range ids {
			total++
			state, ok := states[id]
			if !ok {
				mastery[domain.MasteryNew]++
				continue
			}
			mastery[s.scheduler.MasteryLevel(state)]++
		}
	}

	return &ProgressSummary{
		TotalCards: total,
		Mastery:    mastery,
		Due:        bucketCounts(buckets),
		Streak:     s.classifier.ActiveStreak(streak, now),
		LastStudy:  streak.LastStudyDay,
	}, nil
}

// DeleteAllProgress implements Service.
func (s *studyService) DeleteAllProgress(ctx context.Context, learnerID domain.LearnerID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.progress.WithTx(tx).DeleteAllProgress(ctx, learnerID)
	})
	if err != nil {
		return newServiceError("delete_progress", "failed to delete progress", err)
	}

	if s.sessions != nil {
		if err := s.sessions.Clear(ctx, learnerID); err != nil {
			s.log(ctx).Warn("failed to clear session after delete",
				slog.String("learner_id", learnerID.String()),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// EndSession implements Service.
func (s *studyService) EndSession(ctx context.Context, learnerID domain.LearnerID) error {
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.Clear(ctx, learnerID); err != nil {
		return newServiceError("end_session", "failed to clear session", err)
	}
	return nil
}

// load fetches the catalog order and the learner's states.
func (s *studyService) load(
	ctx context.Context,
	learnerID domain.LearnerID,
	filter domain.CatalogFilter,
) ([]domain.CardID, map[domain.CardID]domain.MemoryState, error) {
	catalog, err := s.catalog.ListCardIDs(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	states, err := s.progress.LoadAllStates(ctx, learnerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load states: %w", err)
	}
	return catalog, states, nil
}

// answeredInSession is best-effort: a failing cache only loses the exclusions.
func (s *studyService) answeredInSession(ctx context.Context, learnerID domain.LearnerID) []domain.CardID {
	if s.sessions == nil {
		return nil
	}
	ids, err := s.sessions.Answered(ctx, learnerID)
	if err != nil {
		s.log(ctx).Warn("failed to read session exclusions",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil
	}
	return ids
}

func (s *studyService) markAnswered(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.MarkAnswered(ctx, learnerID, cardID); err != nil {
		s.log(ctx).Warn("failed to mark card answered in session",
			slog.String("learner_id", learnerID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
	}
}

func bucketCounts(b domain.DueBuckets) map[domain.Bucket]int {
	return map[domain.Bucket]int{
		domain.BucketOverdue:  len(b.Overdue),
		domain.BucketDueToday: len(b.DueToday),
		domain.BucketNew:      len(b.New),
		domain.BucketUpcoming: len(b.Upcoming),
	}
}
