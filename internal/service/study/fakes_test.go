package study_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
)

type progressKey struct {
	learner domain.LearnerID
	card    domain.CardID
}

// fakeProgressStore keeps progress in memory. WithTx returns the same store,
// so writes made inside a rolled-back transaction stay visible.
type fakeProgressStore struct {
	mu       sync.Mutex
	records  map[progressKey]*domain.CardProgress
	streaks  map[domain.LearnerID]domain.StudyStreak
	saveErr  error
	loadErr  error
	activity int // RecordStudyActivity calls
}

var _ store.ProgressStore = (*fakeProgressStore)(nil)

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{
		records: make(map[progressKey]*domain.CardProgress),
		streaks: make(map[domain.LearnerID]domain.StudyStreak),
	}
}

func (f *fakeProgressStore) put(learner domain.LearnerID, card domain.CardID, state domain.MemoryState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := domain.NewCardProgress(learner, card, state.NextReviewAt)
	p.State = state
	f.records[progressKey{learner, card}] = p
}

func (f *fakeProgressStore) get(learner domain.LearnerID, card domain.CardID) (*domain.CardProgress, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.records[progressKey{learner, card}]
	return p, ok
}

func (f *fakeProgressStore) LoadAllStates(
	_ context.Context,
	learnerID domain.LearnerID,
) (map[domain.CardID]domain.MemoryState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make(map[domain.CardID]domain.MemoryState)
	for k, p := range f.records {
		if k.learner == learnerID {
			out[k.card] = p.State
		}
	}
	return out, nil
}

func (f *fakeProgressStore) LoadState(
	_ context.Context,
	learnerID domain.LearnerID,
	cardID domain.CardID,
) (*domain.CardProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.records[progressKey{learnerID, cardID}]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProgressStore) EnsureState(
	_ context.Context,
	learnerID domain.LearnerID,
	cardID domain.CardID,
	now time.Time,
) (*domain.CardProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey{learnerID, cardID}
	p, ok := f.records[key]
	if !ok {
		p = domain.NewCardProgress(learnerID, cardID, now)
		f.records[key] = p
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProgressStore) SaveState(
	_ context.Context,
	progressID domain.ProgressID,
	state domain.MemoryState,
	now time.Time,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	for _, p := range f.records {
		if p.ID == progressID {
			p.State = state
			p.UpdatedAt = now
			return nil
		}
	}
	return store.ErrProgressNotFound
}

func (f *fakeProgressStore) AppendReview(_ context.Context, progressID domain.ProgressID, review domain.ReviewRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.records {
		if p.ID == progressID {
			p.AppendReview(review)
			return nil
		}
	}
	return store.ErrProgressNotFound
}

func (f *fakeProgressStore) ListReviews(
	_ context.Context,
	progressID domain.ProgressID,
	limit int,
) ([]domain.ReviewRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.records {
		if p.ID == progressID {
			if limit > len(p.Reviews) {
				limit = len(p.Reviews)
			}
			return append([]domain.ReviewRecord(nil), p.Reviews[:limit]...), nil
		}
	}
	return nil, store.ErrProgressNotFound
}

func (f *fakeProgressStore) ResetState(
	_ context.Context,
	learnerID domain.LearnerID,
	cardID domain.CardID,
	now time.Time,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.records[progressKey{learnerID, cardID}]
	if !ok {
		return store.ErrProgressNotFound
	}
	p.State = domain.NewMemoryState(now)
	p.Reviews = nil
	return nil
}

func (f *fakeProgressStore) DeleteAllProgress(_ context.Context, learnerID domain.LearnerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.records {
		if k.learner == learnerID {
			delete(f.records, k)
		}
	}
	delete(f.streaks, learnerID)
	return nil
}

func (f *fakeProgressStore) GetStreak(_ context.Context, learnerID domain.LearnerID) (domain.StudyStreak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streaks[learnerID], nil
}

func (f *fakeProgressStore) RecordStudyActivity(
	_ context.Context,
	learnerID domain.LearnerID,
	now time.Time,
	update store.StreakUpdater,
) (domain.StudyStreak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activity++
	next := update(f.streaks[learnerID], now)
	f.streaks[learnerID] = next
	return next, nil
}

func (f *fakeProgressStore) WithTx(*sql.Tx) store.ProgressStore {
	return f
}

// fakeCatalogStore serves a fixed, ordered catalog.
type fakeCatalogStore struct {
	cards   []domain.Card
	listErr error
}

var _ store.CatalogStore = (*fakeCatalogStore)(nil)

func newFakeCatalogStore(ids ...domain.CardID) *fakeCatalogStore {
	f := &fakeCatalogStore{}
	for i, id := range ids {
		f.cards = append(f.cards, domain.Card{
			ID:         id,
			Category:   "general",
			Difficulty: "easy",
			Prompt:     "prompt " + string(id),
			Position:   i,
		})
	}
	return f
}

func (f *fakeCatalogStore) ListCardIDs(_ context.Context, filter domain.CatalogFilter) ([]domain.CardID, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	cards := append([]domain.Card(nil), f.cards...)
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Position < cards[j].Position })
	ids := make([]domain.CardID, 0, len(cards))
	for _, c := range cards {
		if filter.Matches(c) {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (f *fakeCatalogStore) GetCard(_ context.Context, id domain.CardID) (*domain.Card, error) {
	for _, c := range f.cards {
		if c.ID == id {
			card := c
			return &card, nil
		}
	}
	return nil, store.ErrCardNotFound
}

func (f *fakeCatalogStore) Upsert(_ context.Context, cards []domain.Card) error {
	f.cards = append(f.cards, cards...)
	return nil
}

func (f *fakeCatalogStore) WithTx(*sql.Tx) store.CatalogStore {
	return f
}

// fakeSessionStore records answered cards per learner.
type fakeSessionStore struct {
	mu       sync.Mutex
	answered map[domain.LearnerID][]domain.CardID
	err      error
}

var _ store.SessionStore = (*fakeSessionStore)(nil)

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{answered: make(map[domain.LearnerID][]domain.CardID)}
}

func (f *fakeSessionStore) MarkAnswered(_ context.Context, learnerID domain.LearnerID, cardID domain.CardID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.answered[learnerID] = append(f.answered[learnerID], cardID)
	return nil
}

func (f *fakeSessionStore) Answered(_ context.Context, learnerID domain.LearnerID) ([]domain.CardID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.CardID(nil), f.answered[learnerID]...), nil
}

func (f *fakeSessionStore) Clear(_ context.Context, learnerID domain.LearnerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.answered, learnerID)
	return nil
}
