package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
)

const (
	selectCardIDsQuery = `
		SELECT id
		FROM catalog_cards
		WHERE ($1::text = '' OR category = $1)
			AND ($2::text = '' OR difficulty = $2)
		ORDER BY position, id`

	selectCardQuery = `
		SELECT id, category, difficulty, prompt, position, created_at, updated_at
		FROM catalog_cards
		WHERE id = $1`

	upsertCardQuery = `
		INSERT INTO catalog_cards (id, category, difficulty, prompt, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET category = EXCLUDED.category,
			difficulty = EXCLUDED.difficulty,
			prompt = EXCLUDED.prompt,
			position = EXCLUDED.position,
			updated_at = NOW()`
)

// PostgresCatalogStore implements store.CatalogStore on PostgreSQL.
type PostgresCatalogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCatalogStore creates a catalog store. If logger is nil,
// slog.Default() is used.
func NewPostgresCatalogStore(db store.DBTX, logger *slog.Logger) *PostgresCatalogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCatalogStore{
		db:     db,
		logger: logger.With(slog.String("component", "catalog_store")),
	}
}

var _ store.CatalogStore = (*PostgresCatalogStore)(nil)

// WithTx implements store.CatalogStore.
func (s *PostgresCatalogStore) WithTx(tx *sql.Tx) store.CatalogStore {
	return &PostgresCatalogStore{db: tx, logger: s.logger}
}

// ListCardIDs implements store.CatalogStore.
func (s *PostgresCatalogStore) ListCardIDs(ctx context.Context, filter domain.CatalogFilter) ([]domain.CardID, error) {
	rows, err := s.db.QueryContext(ctx, selectCardIDsQuery, filter.Category, filter.Difficulty)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list catalog",
			slog.String("category", filter.Category),
			slog.String("difficulty", filter.Difficulty),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", "list", "failed to query catalog", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	ids := make([]domain.CardID, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, store.NewStoreError("card", "list", "failed to scan card id", err)
		}
		ids = append(ids, domain.CardID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "list", "failed to iterate catalog", MapError(err))
	}

	return ids, nil
}

// GetCard implements store.CatalogStore.
func (s *PostgresCatalogStore) GetCard(ctx context.Context, id domain.CardID) (*domain.Card, error) {
	var (
		card  domain.Card
		rawID string
	)
	err := s.db.QueryRowContext(ctx, selectCardQuery, string(id)).Scan(
		&rawID, &card.Category, &card.Difficulty, &card.Prompt, &card.Position,
		&card.CreatedAt, &card.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, store.NewStoreError("card", "get", "failed to load card", MapError(err))
	}

	card.ID = domain.CardID(rawID)
	card.CreatedAt = card.CreatedAt.UTC()
	card.UpdatedAt = card.UpdatedAt.UTC()
	return &card, nil
}

// Upsert implements store.CatalogStore.
func (s *PostgresCatalogStore) Upsert(ctx context.Context, cards []domain.Card) error {
	for i := range cards {
		if err := cards[i].Validate(); err != nil {
			return fmt.Errorf("%w: card %d (%q): %v", store.ErrInvalidEntity, i, cards[i].ID, err)
		}
	}
	if len(cards) == 0 {
		return nil
	}

	stmt, err := s.db.PrepareContext(ctx, upsertCardQuery)
	if err != nil {
		return store.NewStoreError("card", "upsert", "failed to prepare statement", MapError(err))
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range cards {
		if _, err := stmt.ExecContext(ctx, string(c.ID), c.Category, c.Difficulty, c.Prompt, c.Position); err != nil {
			s.logger.ErrorContext(ctx, "failed to upsert card",
				slog.String("card_id", c.ID.String()),
				slog.String("error", err.Error()))
			return store.NewStoreError("card", "upsert", "failed to write card", MapError(err))
		}
	}

	s.logger.InfoContext(ctx, "catalog upserted", slog.Int("count", len(cards)))
	return nil
}
