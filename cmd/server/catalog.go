package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/postgres"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/spf13/cobra"
)

// catalogEntry is one card in an import file. Position defaults to the
// entry's index in the file.
type catalogEntry struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Prompt     string `json:"prompt"`
	Position   *int   `json:"position,omitempty"`
}

func newCatalogCmd() *cobra.Command {
	catalog := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the card catalog",
	}

	catalog.AddCommand(&cobra.Command{
		Use:   "import <file.json|->",
		Short: "Insert or update catalog cards from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := readCatalogFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, l, err := loadRuntime()
			if err != nil {
				return err
			}

			db, err := openDatabase(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := importCatalog(cmd.Context(), db, postgres.NewPostgresCatalogStore(db, l), cards); err != nil {
				return err
			}

			l.Info("catalog imported", slog.Int("cards", len(cards)))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cards\n", len(cards))
			return nil
		},
	})

	return catalog
}

func readCatalogFile(path string, stdin io.Reader) ([]domain.Card, error) {
	if path == "-" {
		return parseCatalog(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return parseCatalog(f)
}

// parseCatalog decodes and validates an import file. Duplicate ids are
// rejected so that one file cannot silently overwrite its own entries.
func parseCatalog(r io.Reader) ([]domain.Card, error) {
	var entries []catalogEntry
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", domain.ErrValidation)
	}

	seen := make(map[domain.CardID]int, len(entries))
	cards := make([]domain.Card, 0, len(entries))
	for i, e := range entries {
		id, err := domain.ParseCardID(e.ID)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if first, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: entry %d repeats id %q from entry %d", domain.ErrValidation, i, id, first)
		}
		seen[id] = i

		position := i
		if e.Position != nil {
			position = *e.Position
		}
		card := domain.Card{
			ID:         id,
			Category:   strings.TrimSpace(e.Category),
			Difficulty: strings.TrimSpace(e.Difficulty),
			Prompt:     e.Prompt,
			Position:   position,
		}
		if err := card.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, id, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// importCatalog upserts every card in one transaction.
func importCatalog(ctx context.Context, db *sql.DB, catalog store.CatalogStore, cards []domain.Card) error {
	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return catalog.WithTx(tx).Upsert(ctx, cards)
	})
}
