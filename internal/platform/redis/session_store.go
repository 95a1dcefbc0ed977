package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
)

const keyPrefix = "study_session:"

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

// SessionStore keeps one set of answered card ids per learner.
type SessionStore struct {
	client goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessionStore creates a SessionStore whose sessions expire ttl after the
// last answer.
func NewSessionStore(client goredis.Cmdable, ttl time.Duration, logger *slog.Logger) *SessionStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		panic("session ttl must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*SessionStore)(nil)

func sessionKey(learnerID domain.LearnerID) string {
	return keyPrefix + learnerID.String()
}

// MarkAnswered implements store.SessionStore.
func (s *SessionStore) MarkAnswered(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID) error {
	key := sessionKey(learnerID)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.SAdd(ctx, key, string(cardID))
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to mark card answered",
			slog.String("learner_id", learnerID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("mark answered: %w", err)
	}
	return nil
}

// Answered implements store.SessionStore.
func (s *SessionStore) Answered(ctx context.Context, learnerID domain.LearnerID) ([]domain.CardID, error) {
	members, err := s.client.SMembers(ctx, sessionKey(learnerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list answered: %w", err)
	}

	ids := make([]domain.CardID, len(members))
	for i, m := range members {
		ids[i] = domain.CardID(m)
	}
	return ids, nil
}

// Clear implements store.SessionStore.
func (s *SessionStore) Clear(ctx context.Context, learnerID domain.LearnerID) error {
	if err := s.client.Del(ctx, sessionKey(learnerID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
