package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

const entityProgress = "card_progress"

const progressColumns = `id, learner_id, card_id, ease_factor, interval_days, repetitions,
	next_review_at, last_reviewed_at, created_at, updated_at`

const (
	selectAllStatesQuery = `
		SELECT card_id, ease_factor, interval_days, repetitions, next_review_at, last_reviewed_at
		FROM card_progress
		WHERE learner_id = $1`

	selectProgressQuery = `
		SELECT ` + progressColumns + `
		FROM card_progress
		WHERE learner_id = $1 AND card_id = $2`

	selectProgressForUpdateQuery = selectProgressQuery + `
		FOR UPDATE`

	insertProgressIfMissingQuery = `
		INSERT INTO card_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (learner_id, card_id) DO NOTHING`

	updateStateQuery = `
		UPDATE card_progress
		SET ease_factor = $2, interval_days = $3, repetitions = $4,
			next_review_at = $5, last_reviewed_at = $6, updated_at = $7
		WHERE id = $1`

	resetStateQuery = `
		UPDATE card_progress
		SET ease_factor = $3, interval_days = 0, repetitions = 0,
			next_review_at = $4, last_reviewed_at = NULL, updated_at = $4
		WHERE learner_id = $1 AND card_id = $2
		RETURNING id`

	insertReviewQuery = `
		INSERT INTO review_records (progress_id, reviewed_at, quality, latency_ms, answer_revealed)
		VALUES ($1, $2, $3, $4, $5)`

	trimReviewsQuery = `
		DELETE FROM review_records
		WHERE progress_id = $1
			AND id NOT IN (
				SELECT id FROM review_records
				WHERE progress_id = $1
				ORDER BY reviewed_at DESC, id DESC
				LIMIT $2
			)`

	selectReviewsQuery = `
		SELECT reviewed_at, quality, latency_ms, answer_revealed
		FROM review_records
		WHERE progress_id = $1
		ORDER BY reviewed_at DESC, id DESC
		LIMIT $2`

	deleteReviewsQuery = `DELETE FROM review_records WHERE progress_id = $1`

	deleteLearnerProgressQuery = `DELETE FROM card_progress WHERE learner_id = $1`

	deleteLearnerStreakQuery = `DELETE FROM study_streaks WHERE learner_id = $1`

	selectStreakQuery = `
		SELECT current_streak, last_study_day
		FROM study_streaks
		WHERE learner_id = $1`

	selectStreakForUpdateQuery = selectStreakQuery + `
		FOR UPDATE`

	insertStreakIfMissingQuery = `
		INSERT INTO study_streaks (learner_id, current_streak, last_study_day, updated_at)
		VALUES ($1, 0, NULL, $2)
		ON CONFLICT (learner_id) DO NOTHING`

	updateStreakQuery = `
		UPDATE study_streaks
		SET current_streak = $2, last_study_day = $3, updated_at = $4
		WHERE learner_id = $1`
)

// PostgresProgressStore implements store.ProgressStore on PostgreSQL.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a progress store over a connection or
// transaction managed by the caller. If logger is nil, slog.Default() is used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// WithTx implements store.ProgressStore.
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{db: tx, logger: s.logger}
}

func (s *PostgresProgressStore) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*domain.CardProgress, error) {
	var (
		p              domain.CardProgress
		id, learnerID  uuid.UUID
		cardID         string
		lastReviewedAt sql.NullTime
	)
	err := row.Scan(
		&id, &learnerID, &cardID,
		&p.State.EaseFactor, &p.State.Interval, &p.State.Repetitions,
		&p.State.NextReviewAt, &lastReviewedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ID = domain.ProgressID(id)
	p.LearnerID = domain.LearnerID(learnerID)
	p.CardID = domain.CardID(cardID)
	p.State.NextReviewAt = p.State.NextReviewAt.UTC()
	p.State.LastReviewedAt = fromNullTime(lastReviewedAt)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// LoadAllStates implements store.ProgressStore.
func (s *PostgresProgressStore) LoadAllStates(
	ctx context.Context,
	learnerID domain.LearnerID,
) (map[domain.CardID]domain.MemoryState, error) {
	rows, err := s.db.QueryContext(ctx, selectAllStatesQuery, learnerID.UUID())
	if err != nil {
		s.log(ctx).Error("failed to query memory states",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError(entityProgress, "load_all", "failed to query states", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	states := make(map[domain.CardID]domain.MemoryState)
	for rows.Next() {
		var (
			cardID string
			state  domain.MemoryState
			last   sql.NullTime
		)
		if err := rows.Scan(&cardID, &state.EaseFactor, &state.Interval, &state.Repetitions,
			&state.NextReviewAt, &last); err != nil {
			return nil, store.NewStoreError(entityProgress, "load_all", "failed to scan state", err)
		}
		state.NextReviewAt = state.NextReviewAt.UTC()
		state.LastReviewedAt = fromNullTime(last)
		states[domain.CardID(cardID)] = state
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError(entityProgress, "load_all", "failed to iterate states", MapError(err))
	}

	return states, nil
}

// LoadState implements store.ProgressStore.
func (s *PostgresProgressStore) LoadState(
	ctx context.Context,
	learnerID domain.LearnerID,
	cardID domain.CardID,
) (*domain.CardProgress, error) {
	p, err := scanProgress(s.db.QueryRowContext(ctx, selectProgressQuery, learnerID.UUID(), string(cardID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		s.log(ctx).Error("failed to load progress",
			slog.String("learner_id", learnerID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError(entityProgress, "load", "failed to load progress", MapError(err))
	}

	reviews, err := s.ListReviews(ctx, p.ID, domain.MaxReviewHistory)
	if err != nil {
		return nil, err
	}
	p.Reviews = reviews

	return p, nil
}

// EnsureState implements store.ProgressStore. Reviews are not loaded.
func (s *PostgresProgressStore) EnsureState(
	ctx context.Context,
	learnerID domain.LearnerID,
	cardID domain.CardID,
	now time.Time,
) (*domain.CardProgress, error) {
	fresh := domain.NewCardProgress(learnerID, cardID, now)
	_, err := s.db.ExecContext(ctx, insertProgressIfMissingQuery,
		fresh.ID.UUID(), learnerID.UUID(), string(cardID),
		fresh.State.EaseFactor, fresh.State.Interval, fresh.State.Repetitions,
		fresh.State.NextReviewAt, toNullTime(fresh.State.LastReviewedAt),
		fresh.CreatedAt, fresh.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, store.ErrCardNotFound
		}
		s.log(ctx).Error("failed to create progress",
			slog.String("learner_id", learnerID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError(entityProgress, "ensure", "failed to create progress", MapError(err))
	}

	p, err := scanProgress(s.db.QueryRowContext(ctx, selectProgressForUpdateQuery, learnerID.UUID(), string(cardID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Deleted between insert and select by a concurrent DeleteAllProgress.
			return nil, store.ErrProgressNotFound
		}
		return nil, store.NewStoreError(entityProgress, "ensure", "failed to lock progress", MapError(err))
	}

	return p, nil
}

// SaveState implements store.ProgressStore.
func (s *PostgresProgressStore) SaveState(
	ctx context.Context,
	progressID domain.ProgressID,
	state domain.MemoryState,
	now time.Time,
) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, updateStateQuery,
		progressID.UUID(), state.EaseFactor, state.Interval, state.Repetitions,
		state.NextReviewAt, toNullTime(state.LastReviewedAt), now,
	)
	if err != nil {
		s.log(ctx).Error("failed to save state",
			slog.String("progress_id", progressID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError(entityProgress, "save", "failed to update state", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrProgressNotFound)
}

// AppendReview implements store.ProgressStore.
func (s *PostgresProgressStore) AppendReview(
	ctx context.Context,
	progressID domain.ProgressID,
	review domain.ReviewRecord,
) error {
	if err := review.Quality.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, insertReviewQuery,
		progressID.UUID(), review.ReviewedAt, int(review.Quality),
		review.Latency.Milliseconds(), review.AnswerRevealed,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrProgressNotFound
		}
		s.log(ctx).Error("failed to append review",
			slog.String("progress_id", progressID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("review_record", "append", "failed to insert review", MapError(err))
	}

	if _, err := s.db.ExecContext(ctx, trimReviewsQuery, progressID.UUID(), domain.MaxReviewHistory); err != nil {
		return store.NewStoreError("review_record", "append", "failed to trim history", MapError(err))
	}

	return nil
}

// ListReviews implements store.ProgressStore. A limit outside
// [1, MaxReviewHistory] means MaxReviewHistory.
func (s *PostgresProgressStore) ListReviews(
	ctx context.Context,
	progressID domain.ProgressID,
	limit int,
) ([]domain.ReviewRecord, error) {
	if limit <= 0 || limit > domain.MaxReviewHistory {
		limit = domain.MaxReviewHistory
	}

	rows, err := s.db.QueryContext(ctx, selectReviewsQuery, progressID.UUID(), limit)
	if err != nil {
		return nil, store.NewStoreError("review_record", "list", "failed to query reviews", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	reviews := make([]domain.ReviewRecord, 0)
	for rows.Next() {
		var (
			r         domain.ReviewRecord
			quality   int
			latencyMS int64
		)
		if err := rows.Scan(&r.ReviewedAt, &quality, &latencyMS, &r.AnswerRevealed); err != nil {
			return nil, store.NewStoreError("review_record", "list", "failed to scan review", err)
		}
		r.ReviewedAt = r.ReviewedAt.UTC()
		r.Quality = domain.QualityRating(quality)
		r.Latency = time.Duration(latencyMS) * time.Millisecond
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_record", "list", "failed to iterate reviews", MapError(err))
	}

	return reviews, nil
}

// ResetState implements store.ProgressStore. Run it in a transaction so the
// state and history change together.
func (s *PostgresProgressStore) ResetState(
	ctx context.Context,
	learnerID domain.LearnerID,
	cardID domain.CardID,
	now time.Time,
) error {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, resetStateQuery,
		learnerID.UUID(), string(cardID), domain.DefaultEaseFactor, now,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrProgressNotFound
		}
		return store.NewStoreError(entityProgress, "reset", "failed to reset state", MapError(err))
	}

	if _, err := s.db.ExecContext(ctx, deleteReviewsQuery, id); err != nil {
		return store.NewStoreError("review_record", "reset", "failed to discard history", MapError(err))
	}

	s.log(ctx).Debug("progress reset",
		slog.String("learner_id", learnerID.String()),
		slog.String("card_id", cardID.String()))
	return nil
}

// DeleteAllProgress implements store.ProgressStore. Reviews go with their
// progress rows through ON DELETE CASCADE.
func (s *PostgresProgressStore) DeleteAllProgress(ctx context.Context, learnerID domain.LearnerID) error {
	if _, err := s.db.ExecContext(ctx, deleteLearnerProgressQuery, learnerID.UUID()); err != nil {
		return store.NewStoreError(entityProgress, "delete_all", "failed to delete progress", MapError(err))
	}
	if _, err := s.db.ExecContext(ctx, deleteLearnerStreakQuery, learnerID.UUID()); err != nil {
		return store.NewStoreError("study_streak", "delete_all", "failed to delete streak", MapError(err))
	}

	s.log(ctx).Info("deleted all progress", slog.String("learner_id", learnerID.String()))
	return nil
}

func scanStreak(row rowScanner) (domain.StudyStreak, error) {
	var (
		streak domain.StudyStreak
		last   sql.NullTime
	)
	if err := row.Scan(&streak.Current, &last); err != nil {
		return domain.StudyStreak{}, err
	}
	streak.LastStudyDay = fromNullTime(last)
	return streak, nil
}

// GetStreak implements store.ProgressStore.
func (s *PostgresProgressStore) GetStreak(ctx context.Context, learnerID domain.LearnerID) (domain.StudyStreak, error) {
	streak, err := scanStreak(s.db.QueryRowContext(ctx, selectStreakQuery, learnerID.UUID()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StudyStreak{}, nil
		}
		return domain.StudyStreak{}, store.NewStoreError("study_streak", "get", "failed to load streak", MapError(err))
	}
	return streak, nil
}

// RecordStudyActivity implements store.ProgressStore.
func (s *PostgresProgressStore) RecordStudyActivity(
	ctx context.Context,
	learnerID domain.LearnerID,
	now time.Time,
	update store.StreakUpdater,
) (domain.StudyStreak, error) {
	if update == nil {
		return domain.StudyStreak{}, fmt.Errorf("%w: nil streak updater", store.ErrInvalidEntity)
	}

	if _, err := s.db.ExecContext(ctx, insertStreakIfMissingQuery, learnerID.UUID(), now); err != nil {
		return domain.StudyStreak{}, store.NewStoreError("study_streak", "record", "failed to create streak", MapError(err))
	}

	current, err := scanStreak(s.db.QueryRowContext(ctx, selectStreakForUpdateQuery, learnerID.UUID()))
	if err != nil {
		return domain.StudyStreak{}, store.NewStoreError("study_streak", "record", "failed to lock streak", MapError(err))
	}

	next := update(current, now)
	if _, err := s.db.ExecContext(ctx, updateStreakQuery,
		learnerID.UUID(), next.Current, toNullTime(next.LastStudyDay), now,
	); err != nil {
		return domain.StudyStreak{}, store.NewStoreError("study_streak", "record", "failed to update streak", MapError(err))
	}

	return next, nil
}
