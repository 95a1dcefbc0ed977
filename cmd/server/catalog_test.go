package main

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	t.Parallel()

	t.Run("positions default to file order", func(t *testing.T) {
		t.Parallel()

		cards, err := parseCatalog(strings.NewReader(`[
			{"id": "c1", "category": " history ", "difficulty": "easy", "prompt": "When?"},
			{"id": "c2", "category": "history", "difficulty": "hard", "prompt": "Who?", "position": 10},
			{"id": "c3", "category": "math", "difficulty": "easy", "prompt": "How many?"}
		]`))
		require.NoError(t, err)
		require.Len(t, cards, 3)

		assert.Equal(t, domain.CardID("c1"), cards[0].ID)
		assert.Equal(t, "history", cards[0].Category)
		assert.Equal(t, 0, cards[0].Position)
		assert.Equal(t, 10, cards[1].Position)
		assert.Equal(t, 2, cards[2].Position)
	})

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "not json", input: `{`},
		{name: "not an array", input: `{"id": "c1"}`},
		{name: "unknown field", input: `[{"id": "c1", "prompt": "?", "answer": "x"}]`},
		{name: "empty", input: `[]`, wantErr: domain.ErrValidation},
		{name: "blank id", input: `[{"id": " ", "prompt": "?"}]`, wantErr: domain.ErrInvalidID},
		{name: "missing prompt", input: `[{"id": "c1"}]`, wantErr: domain.ErrCardPromptEmpty},
		{
			name:    "duplicate id",
			input:   `[{"id": "c1", "prompt": "a"}, {"id": "c1", "prompt": "b"}]`,
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parseCatalog(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

type recordingCatalog struct {
	store.CatalogStore
	upserted []domain.Card
	err      error
}

func (r *recordingCatalog) Upsert(_ context.Context, cards []domain.Card) error {
	if r.err != nil {
		return r.err
	}
	r.upserted = append(r.upserted, cards...)
	return nil
}

func (r *recordingCatalog) WithTx(*sql.Tx) store.CatalogStore { return r }

func TestImportCatalog(t *testing.T) {
	t.Parallel()

	cards := []domain.Card{{ID: "c1", Prompt: "?"}, {ID: "c2", Prompt: "?", Position: 1}}

	t.Run("commits", func(t *testing.T) {
		t.Parallel()

		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectBegin()
		mock.ExpectCommit()

		catalog := &recordingCatalog{}
		require.NoError(t, importCatalog(context.Background(), db, catalog, cards))
		assert.Equal(t, cards, catalog.upserted)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		t.Parallel()

		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectBegin()
		mock.ExpectRollback()

		catalog := &recordingCatalog{err: store.ErrInvalidEntity}
		err = importCatalog(context.Background(), db, catalog, cards)
		assert.True(t, errors.Is(err, store.ErrInvalidEntity))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
