package cards

import (
	"context"

	"github.com/dailygrace/dailygrace/internal/client/models"
)

// Repository is the local tier of the card store.
type Repository interface {
	// Put inserts a card or replaces the one with the same id.
	Put(ctx context.Context, card *models.VerseCard) error

	// GetAll returns every card, newest first.
	GetAll(ctx context.Context) ([]models.VerseCard, error)

	// GetByID returns common.ErrorNotFound for an unknown id.
	GetByID(ctx context.Context, id string) (*models.VerseCard, error)

	// DeleteByID is a no-op for an unknown id.
	DeleteByID(ctx context.Context, id string) error

	// Clear drops every local card.
	Clear(ctx context.Context) error
}
