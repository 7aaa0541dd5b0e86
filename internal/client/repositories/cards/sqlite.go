package cards

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/dailygrace/dailygrace/internal/dbx"
)

// sortable keeps lexical order equal to chronological order
const sortable = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, c *models.VerseCard) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode card %s: %w", c.ID, err)
	}

	query := `INSERT INTO card_assets (id, created_at, updated_at, body) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			body = excluded.body`
	_, err = r.db.ExecContext(ctx, query, c.ID,
		c.CreatedAt.UTC().Format(sortable), c.UpdatedAt.UTC().Format(sortable), body)
	if err != nil {
		return fmt.Errorf("failed to upsert card %s: %w", c.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.VerseCard, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT body FROM card_assets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select cards: %w", err)
	}
	defer rows.Close()

	result := make([]models.VerseCard, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		var c models.VerseCard
		if err := json.Unmarshal(body, &c); err != nil {
			return nil, fmt.Errorf("failed to decode card: %w", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.VerseCard, error) {
	var body []byte
	err := r.db.QueryRowContext(ctx, `SELECT body FROM card_assets WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}

	c := &models.VerseCard{}
	if err := json.Unmarshal(body, c); err != nil {
		return nil, fmt.Errorf("failed to decode card %s: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM card_assets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM card_assets`); err != nil {
		return fmt.Errorf("failed to clear cards: %w", err)
	}
	return nil
}
