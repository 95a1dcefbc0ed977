package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/scry-study/internal/domain"
)

// CatalogStore is read access to the card catalog plus bulk import.
type CatalogStore interface {
	// ListCardIDs returns the ids of cards matching filter in catalog order
	// (position, then id).
	ListCardIDs(ctx context.Context, filter domain.CatalogFilter) ([]domain.CardID, error)

	// GetCard returns a single card. Returns ErrCardNotFound if it is not in the catalog.
	GetCard(ctx context.Context, id domain.CardID) (*domain.Card, error)

	// Upsert inserts or updates cards by id. Every card must pass Validate;
	// otherwise nothing is written and ErrInvalidEntity is returned.
	// Run it inside RunInTransaction so a failed import leaves no partial writes.
	Upsert(ctx context.Context, cards []domain.Card) error

	// WithTx returns a CatalogStore that runs every statement in tx.
	WithTx(tx *sql.Tx) CatalogStore
}
