package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dailygrace/dailygrace/internal/client/events"
	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/dailygrace/dailygrace/internal/timex"
)

// Categories is the category collection. Only user categories are stored;
// the four built-ins are prepended on every read and can be neither
// changed nor removed. Every change is announced on the bus.
type Categories struct {
	store *Store[models.Category, *models.Category]
}

func NewCategories(db *sql.DB, clock timex.Clock, m Mirror[models.Category], bus events.Publisher) *Categories {
	if bus == nil {
		bus = events.Discard{}
	}
	return &Categories{
		store: New[models.Category](models.KindCategory, db, clock, m, Hooks[models.Category]{
			OldestFirst: true,
			Normalize:   func(c *models.Category) { c.Normalize() },
			Validate:    validateCategory,
			Changed: func(_ context.Context, id string) {
				bus.Publish(events.Event{Topic: events.CategoriesUpdated, ID: id})
			},
		}),
	}
}

func validateCategory(others []models.Category, c *models.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, b := range models.Builtins() {
		if b.SameName(c.Name) {
			return fmt.Errorf("category %q: %w", c.Name, common.ErrDuplicateName)
		}
	}
	for i := range others {
		if others[i].SameName(c.Name) {
			return fmt.Errorf("category %q: %w", c.Name, common.ErrDuplicateName)
		}
	}
	if len(others) >= common.MaxCustomCategories {
		return fmt.Errorf("%d categories: %w", len(others), common.ErrCategoryLimit)
	}
	return nil
}

func (c *Categories) Kind() models.Kind { return models.KindCategory }

// List returns the built-ins in fixed order followed by user categories in
// creation order.
func (c *Categories) List(ctx context.Context) ([]models.Category, error) {
	custom, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return append(models.Builtins(), custom...), nil
}

// Custom returns only user categories.
func (c *Categories) Custom(ctx context.Context) ([]models.Category, error) {
	return c.store.List(ctx)
}

func (c *Categories) Get(ctx context.Context, id string) (models.Category, error) {
	for _, b := range models.Builtins() {
		if b.ID == id {
			return b, nil
		}
	}
	return c.store.Get(ctx, id)
}

// Create rejects a name already used by any category, compared without
// case, and an eleventh user category.
func (c *Categories) Create(ctx context.Context, cat models.Category) (models.Category, error) {
	return c.store.Create(ctx, cat)
}

func (c *Categories) Update(ctx context.Context, id string, patch Patch[models.Category]) (models.Category, error) {
	if models.IsBuiltinCategory(id) {
		return models.Category{}, fmt.Errorf("category %s: %w", id, common.ErrBuiltinCategory)
	}
	return c.store.Update(ctx, id, patch)
}

// Remove deletes a user category. Its records stay where they are.
func (c *Categories) Remove(ctx context.Context, id string) error {
	if models.IsBuiltinCategory(id) {
		return fmt.Errorf("category %s: %w", id, common.ErrBuiltinCategory)
	}
	return c.store.Remove(ctx, id)
}

// ReplaceAll stores the user categories among cats. Built-in ids are
// dropped, so the built-ins appear exactly once whatever the input holds.
func (c *Categories) ReplaceAll(ctx context.Context, cats []models.Category) error {
	custom := make([]models.Category, 0, len(cats))
	for _, cat := range cats {
		if !cat.IsBuiltin() {
			custom = append(custom, cat)
		}
	}
	return c.store.ReplaceAll(ctx, custom)
}

func (c *Categories) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}
