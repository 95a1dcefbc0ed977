package study_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/due"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      study.Service
	mock     sqlmock.Sqlmock
	progress *fakeProgressStore
	catalog  *fakeCatalogStore
	sessions *fakeSessionStore
	learner  domain.LearnerID
}

func newFixture(t *testing.T, ids ...domain.CardID) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	scheduler, err := srs.NewDefaultService()
	require.NoError(t, err)

	f := &fixture{
		mock:     mock,
		progress: newFakeProgressStore(),
		catalog:  newFakeCatalogStore(ids...),
		sessions: newFakeSessionStore(),
		learner:  domain.LearnerID(uuid.New()),
	}
	f.svc = study.NewService(
		db,
		f.progress,
		f.catalog,
		scheduler,
		due.NewClassifier(time.UTC),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		study.WithSessionStore(f.sessions),
		study.WithClock(func() time.Time { return testNow }),
	)
	return f
}

func reviewedState(next time.Time, interval, reps int) domain.MemoryState {
	last := next.AddDate(0, 0, -interval)
	return domain.MemoryState{
		EaseFactor:     domain.DefaultEaseFactor,
		Interval:       interval,
		Repetitions:    reps,
		NextReviewAt:   next,
		LastReviewedAt: &last,
	}
}

func TestNewService_PanicsOnMissingDependencies(t *testing.T) {
	t.Parallel()

	scheduler, err := srs.NewDefaultService()
	require.NoError(t, err)
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Panics(t, func() {
		study.NewService(nil, newFakeProgressStore(), newFakeCatalogStore(), scheduler, nil, nil)
	})
	assert.Panics(t, func() {
		study.NewService(db, nil, newFakeCatalogStore(), scheduler, nil, nil)
	})
	assert.Panics(t, func() {
		study.NewService(db, newFakeProgressStore(), nil, scheduler, nil, nil)
	})
	assert.Panics(t, func() {
		study.NewService(db, newFakeProgressStore(), newFakeCatalogStore(), nil, nil, nil)
	})
	assert.NotPanics(t, func() {
		study.NewService(db, newFakeProgressStore(), newFakeCatalogStore(), scheduler, nil, nil)
	})
}

func TestNextCard_Priority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		exclude    []domain.CardID
		wantID     domain.CardID
		wantBucket domain.Bucket
		wantDone   bool
	}{
		{name: "overdue first", wantID: "b", wantBucket: domain.BucketOverdue},
		{name: "due today after overdue", exclude: []domain.CardID{"b"}, wantID: "c", wantBucket: domain.BucketDueToday},
		{name: "new last", exclude: []domain.CardID{"b", "c"}, wantID: "a", wantBucket: domain.BucketNew},
		{name: "upcoming never selected", exclude: []domain.CardID{"a", "b", "c"}, wantDone: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, "a", "b", "c", "d")
			f.progress.put(f.learner, "b", reviewedState(testNow.AddDate(0, 0, -3), 1, 1))
			f.progress.put(f.learner, "c", reviewedState(testNow.Add(2*time.Hour), 1, 1))
			f.progress.put(f.learner, "d", reviewedState(testNow.AddDate(0, 0, 5), 6, 2))

			got, err := f.svc.NextCard(context.Background(), f.learner, study.NextCardRequest{Exclude: tt.exclude})
			require.NoError(t, err)

			if tt.wantDone {
				assert.True(t, got.Done)
				assert.Nil(t, got.Card)
				return
			}
			assert.False(t, got.Done)
			require.NotNil(t, got.Card)
			assert.Equal(t, tt.wantID, got.Card.ID)
			assert.Equal(t, tt.wantBucket, got.Bucket)
			assert.Len(t, got.Previews, 6)
		})
	}
}

func TestNextCard_NewCardUsesDefaultState(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "only")

	got, err := f.svc.NextCard(context.Background(), f.learner, study.NextCardRequest{})
	require.NoError(t, err)

	require.NotNil(t, got.Card)
	assert.Equal(t, domain.BucketNew, got.Bucket)
	assert.Equal(t, domain.MasteryNew, got.Mastery)
	assert.Equal(t, domain.DefaultEaseFactor, got.State.EaseFactor)
	assert.Nil(t, got.State.LastReviewedAt)

	// Selection never creates progress.
	_, ok := f.progress.get(f.learner, "only")
	assert.False(t, ok)
}

func TestNextCard_SkipsCardsAnsweredInSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	require.NoError(t, f.sessions.MarkAnswered(context.Background(), f.learner, "a"))

	got, err := f.svc.NextCard(context.Background(), f.learner, study.NextCardRequest{})
	require.NoError(t, err)
	require.NotNil(t, got.Card)
	assert.Equal(t, domain.CardID("b"), got.Card.ID)
}

func TestNextCard_SessionFailureIsIgnored(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a")
	f.sessions.err = errors.New("redis down")

	got, err := f.svc.NextCard(context.Background(), f.learner, study.NextCardRequest{})
	require.NoError(t, err)
	require.NotNil(t, got.Card)
	assert.Equal(t, domain.CardID("a"), got.Card.ID)
}

func TestNextCard_AppliesFilter(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	f.catalog.cards[0].Category = "history"

	got, err := f.svc.NextCard(context.Background(), f.learner, study.NextCardRequest{
		Filter: domain.CatalogFilter{Category: "general"},
	})
	require.NoError(t, err)
	require.NotNil(t, got.Card)
	assert.Equal(t, domain.CardID("b"), got.Card.ID)
}

func TestNextCard_StoreFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a")
	f.progress.loadErr = errors.New("connection reset")

	_, err := f.svc.NextCard(context.Background(), f.learner, study.NextCardRequest{})
	require.Error(t, err)

	var serviceErr *study.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "next_card", serviceErr.Operation)
}

func TestSubmitReview_FirstCorrectAnswer(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	got, err := f.svc.SubmitReview(context.Background(), f.learner, "a", study.ReviewSubmission{
		Quality: domain.QualityCorrectHesitant,
		Latency: 3 * time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.Equal(t, domain.CardID("a"), got.CardID)
	assert.Equal(t, 0, got.Previous.Repetitions)
	assert.Equal(t, 1, got.State.Repetitions)
	assert.Equal(t, 1, got.State.Interval)
	assert.Equal(t, testNow.AddDate(0, 0, 1), got.State.NextReviewAt)
	require.NotNil(t, got.State.LastReviewedAt)
	assert.Equal(t, testNow, *got.State.LastReviewedAt)
	assert.Equal(t, domain.MasteryReview, got.Mastery)
	assert.Equal(t, 1, got.Streak.Current)

	p, ok := f.progress.get(f.learner, "a")
	require.True(t, ok)
	assert.Equal(t, got.State, p.State)
	require.Len(t, p.Reviews, 1)
	assert.Equal(t, domain.QualityCorrectHesitant, p.Reviews[0].Quality)
	assert.Equal(t, 3*time.Second, p.Reviews[0].Latency)

	answered, err := f.sessions.Answered(context.Background(), f.learner)
	require.NoError(t, err)
	assert.Equal(t, []domain.CardID{"a"}, answered)
}

func TestSubmitReview_IncorrectAnswerResetsRepetitions(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a")
	f.progress.put(f.learner, "a", reviewedState(testNow, 15, 4))
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	got, err := f.svc.SubmitReview(context.Background(), f.learner, "a", study.ReviewSubmission{
		Quality: domain.QualityIncorrect,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, got.State.Repetitions)
	assert.Equal(t, 1, got.State.Interval)
	assert.Less(t, got.State.EaseFactor, domain.DefaultEaseFactor)
	assert.Equal(t, domain.MasteryLearning, got.Mastery)
}

func TestSubmitReview_InvalidQuality(t *testing.T) {
	t.Parallel()

	for _, q := range []domain.QualityRating{-1, 6, 42} {
		f := newFixture(t, "a")

		_, err := f.svc.SubmitReview(context.Background(), f.learner, "a", study.ReviewSubmission{Quality: q})
		assert.ErrorIs(t, err, domain.ErrInvalidQuality)

		// Rejected before any transaction is opened.
		require.NoError(t, f.mock.ExpectationsWereMet())
		_, ok := f.progress.get(f.learner, "a")
		assert.False(t, ok)
	}
}

func TestSubmitReview_UnknownCard(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.SubmitReview(context.Background(), f.learner, "missing", study.ReviewSubmission{
		Quality: domain.QualityPerfect,
	})
	assert.ErrorIs(t, err, study.ErrCardNotFound)
	assert.ErrorIs(t, err, domain.ErrUnknownCard)
	require.NoError(t, f.mock.ExpectationsWereMet())
	assert.Equal(t, 0, f.progress.activity)
}

func TestSubmitReview_StoreFailureRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a")
	f.progress.saveErr = errors.New("disk full")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.SubmitReview(context.Background(), f.learner, "a", study.ReviewSubmission{
		Quality: domain.QualityPerfect,
	})
	require.Error(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	var serviceErr *study.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "submit_review", serviceErr.Operation)
	assert.Equal(t, 0, f.progress.activity)

	answered, err := f.sessions.Answered(context.Background(), f.learner)
	require.NoError(t, err)
	assert.Empty(t, answered)
}

func TestSubmitReview_SessionFailureDoesNotFailReview(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a")
	f.sessions.err = errors.New("redis down")
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	got, err := f.svc.SubmitReview(context.Background(), f.learner, "a", study.ReviewSubmission{
		Quality: domain.QualityPerfect,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.State.Repetitions)
}

func TestSubmitReview_StreakAdvancesOncePerDay(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	yesterday := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	f.progress.streaks[f.learner] = domain.StudyStreak{Current: 4, LastStudyDay: &yesterday}

	for _, id := range []domain.CardID{"a", "b"} {
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		got, err := f.svc.SubmitReview(context.Background(), f.learner, id, study.ReviewSubmission{
			Quality: domain.QualityPerfect,
		})
		require.NoError(t, err)
		assert.Equal(t, 5, got.Streak.Current)
	}
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPreview(t *testing.T) {
	t.Parallel()

	t.Run("untouched card", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "a")
		got, err := f.svc.Preview(context.Background(), f.learner, "a")
		require.NoError(t, err)

		assert.Equal(t, domain.MasteryNew, got.Mastery)
		assert.Empty(t, got.Reviews)
		require.Len(t, got.Previews, 6)
		for _, p := range got.Previews {
			assert.Equal(t, 1, p.Days, "quality %d", p.Quality)
			assert.Equal(t, "1 day", p.Label)
		}
	})

	t.Run("reviewed card", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "a")
		f.progress.put(f.learner, "a", reviewedState(testNow, 6, 2))

		got, err := f.svc.Preview(context.Background(), f.learner, "a")
		require.NoError(t, err)
		assert.Equal(t, 6, got.State.Interval)
		for _, p := range got.Previews {
			if p.Quality.IsCorrect() {
				assert.Greater(t, p.Days, 6)
			} else {
				assert.Equal(t, 1, p.Days)
			}
		}

		// Preview must not modify the stored state.
		p, ok := f.progress.get(f.learner, "a")
		require.True(t, ok)
		assert.Equal(t, 2, p.State.Repetitions)
	})

	t.Run("unknown card", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "a")
		_, err := f.svc.Preview(context.Background(), f.learner, "zzz")
		assert.ErrorIs(t, err, study.ErrCardNotFound)
	})
}

func TestResetCard(t *testing.T) {
	t.Parallel()

	t.Run("resets state and history", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "a")
		f.progress.put(f.learner, "a", reviewedState(testNow.AddDate(0, 0, 20), 30, 5))
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		require.NoError(t, f.svc.ResetCard(context.Background(), f.learner, "a"))
		require.NoError(t, f.mock.ExpectationsWereMet())

		p, ok := f.progress.get(f.learner, "a")
		require.True(t, ok)
		assert.Equal(t, domain.NewMemoryState(testNow), p.State)
		assert.Empty(t, p.Reviews)
	})

	t.Run("never studied", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "a")
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		err := f.svc.ResetCard(context.Background(), f.learner, "a")
		assert.ErrorIs(t, err, study.ErrNoProgress)
		require.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("unknown card", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "a")
		err := f.svc.ResetCard(context.Background(), f.learner, "zzz")
		assert.ErrorIs(t, err, study.ErrCardNotFound)
		require.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestDueSummary(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b", "c", "d")
	f.progress.put(f.learner, "b", reviewedState(testNow.AddDate(0, 0, -2), 1, 1))
	f.progress.put(f.learner, "c", reviewedState(testNow, 1, 1))
	f.progress.put(f.learner, "d", reviewedState(testNow.AddDate(0, 0, 3), 6, 2))
	f.progress.put(f.learner, "orphan", reviewedState(testNow.AddDate(0, 0, -9), 1, 1))

	got, err := f.svc.DueSummary(context.Background(), f.learner, domain.CatalogFilter{})
	require.NoError(t, err)

	assert.Equal(t, []domain.CardID{"b"}, got.Buckets.Overdue)
	assert.Equal(t, []domain.CardID{"c"}, got.Buckets.DueToday)
	assert.Equal(t, []domain.CardID{"a"}, got.Buckets.New)
	assert.Equal(t, []domain.CardID{"d"}, got.Buckets.Upcoming)
	assert.Equal(t, map[domain.Bucket]int{
		domain.BucketOverdue:  1,
		domain.BucketDueToday: 1,
		domain.BucketNew:      1,
		domain.BucketUpcoming: 1,
	}, got.Counts)
	assert.Equal(t, 3, got.Actionable)
}

func TestProgressSummary(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b", "c", "d")
	f.progress.put(f.learner, "b", reviewedState(testNow.AddDate(0, 0, 30), 30, 5))
	f.progress.put(f.learner, "c", reviewedState(testNow.AddDate(0, 0, 2), 6, 2))
	reset := domain.NewMemoryState(testNow)
	lapsed := testNow.AddDate(0, 0, -1)
	reset.LastReviewedAt = &lapsed
	f.progress.put(f.learner, "d", reset)

	yesterday := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	f.progress.streaks[f.learner] = domain.StudyStreak{Current: 3, LastStudyDay: &yesterday}

	got, err := f.svc.ProgressSummary(context.Background(), f.learner)
	require.NoError(t, err)

	assert.Equal(t, 4, got.TotalCards)
	assert.Equal(t, map[domain.MasteryLevel]int{
		domain.MasteryNew:      1,
		domain.MasteryLearning: 1,
		domain.MasteryReview:   1,
		domain.MasteryMastered: 1,
	}, got.Mastery)
	assert.Equal(t, 1, got.Due[domain.BucketNew])
	assert.Equal(t, 1, got.Due[domain.BucketDueToday])
	assert.Equal(t, 2, got.Due[domain.BucketUpcoming])
	assert.Equal(t, 3, got.Streak)
	require.NotNil(t, got.LastStudy)
	assert.Equal(t, yesterday, *got.LastStudy)
}

func TestProgressSummary_LapsedStreakReadsZero(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a")
	longAgo := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.progress.streaks[f.learner] = domain.StudyStreak{Current: 9, LastStudyDay: &longAgo}

	got, err := f.svc.ProgressSummary(context.Background(), f.learner)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Streak)
}

func TestDeleteAllProgress(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	f.progress.put(f.learner, "a", reviewedState(testNow, 1, 1))
	other := domain.LearnerID(uuid.New())
	f.progress.put(other, "a", reviewedState(testNow, 1, 1))
	require.NoError(t, f.sessions.MarkAnswered(context.Background(), f.learner, "a"))
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	require.NoError(t, f.svc.DeleteAllProgress(context.Background(), f.learner))
	require.NoError(t, f.mock.ExpectationsWereMet())

	_, ok := f.progress.get(f.learner, "a")
	assert.False(t, ok)
	_, ok = f.progress.get(other, "a")
	assert.True(t, ok, "other learners are untouched")

	answered, err := f.sessions.Answered(context.Background(), f.learner)
	require.NoError(t, err)
	assert.Empty(t, answered)
}

func TestEndSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a")
	require.NoError(t, f.sessions.MarkAnswered(context.Background(), f.learner, "a"))

	require.NoError(t, f.svc.EndSession(context.Background(), f.learner))

	got, err := f.svc.NextCard(context.Background(), f.learner, study.NextCardRequest{})
	require.NoError(t, err)
	require.NotNil(t, got.Card)
	assert.Equal(t, domain.CardID("a"), got.Card.ID)

	f.sessions.err = errors.New("redis down")
	err = f.svc.EndSession(context.Background(), f.learner)
	var serviceErr *study.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "end_session", serviceErr.Operation)
}
