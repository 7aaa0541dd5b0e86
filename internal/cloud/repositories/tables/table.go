// Package tables implements the per-kind remote tables on Postgres. Field
// names map from camelCase to snake_case columns; checklists, tags, item
// lists and editor state travel as JSON columns.
package tables

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

var dialect = goqu.Dialect("postgres")

// Mapping describes the kind specific columns of a table. Values and Dest
// list the same columns in the same order as Columns; the envelope and
// user_id columns are handled by Table.
type Mapping[T any] struct {
	Name    string
	Columns []string
	Values  func(v *T) ([]any, error)
	Dest    func(v *T) []any
}

// Table is one kind's remote table. It satisfies client.RemoteTable.
type Table[T any, PT interface {
	*T
	models.Record
}] struct {
	db *sql.DB
	m  Mapping[T]
}

func New[T any, PT interface {
	*T
	models.Record
}](db *sql.DB, m Mapping[T]) *Table[T, PT] {
	return &Table[T, PT]{db: db, m: m}
}

func (t *Table[T, PT]) record(userID string, v *T) (goqu.Record, error) {
	meta := PT(v).GetMeta()
	vals, err := t.m.Values(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s row %s: %w", t.m.Name, meta.ID, err)
	}
	rec := goqu.Record{
		"id":         meta.ID,
		"user_id":    userID,
		"created_at": meta.CreatedAt,
		"updated_at": meta.UpdatedAt,
	}
	for i, c := range t.m.Columns {
		rec[c] = vals[i]
	}
	return rec, nil
}

func (t *Table[T, PT]) exec(ctx context.Context, ds interface {
	ToSQL() (string, []any, error)
}) error {
	query, args, err := ds.ToSQL()
	if err != nil {
		return fmt.Errorf("build %s query: %w", t.m.Name, err)
	}
	if _, err := t.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Insert writes v, replacing a row with the same id so a retried insert
// is harmless. created_at is kept from the first write.
func (t *Table[T, PT]) Insert(ctx context.Context, userID string, v *T) error {
	rec, err := t.record(userID, v)
	if err != nil {
		return err
	}
	update := goqu.Record{}
	for k := range rec {
		if k != "id" && k != "user_id" && k != "created_at" {
			update[k] = goqu.I("excluded." + k)
		}
	}
	ds := dialect.Insert(t.m.Name).Prepared(true).
		Rows(rec).
		OnConflict(goqu.DoUpdate("user_id, id", update))
	return t.exec(ctx, ds)
}

// Update is the same upsert as Insert: a record created on the device
// while signed out has no row yet when it is first edited signed in.
func (t *Table[T, PT]) Update(ctx context.Context, userID string, v *T) error {
	return t.Insert(ctx, userID, v)
}

func (t *Table[T, PT]) Delete(ctx context.Context, userID, id string) error {
	ds := dialect.Delete(t.m.Name).Prepared(true).
		Where(goqu.Ex{"user_id": userID, "id": id})
	return t.exec(ctx, ds)
}

// SelectAll returns the user's rows, newest created first.
func (t *Table[T, PT]) SelectAll(ctx context.Context, userID string) ([]T, error) {
	cols := []any{"id", "created_at", "updated_at"}
	for _, c := range t.m.Columns {
		cols = append(cols, c)
	}
	query, args, err := dialect.From(t.m.Name).Prepared(true).
		Select(cols...).
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", t.m.Name, err)
	}

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var v T
		meta := PT(&v).GetMeta()
		dest := append([]any{&meta.ID, &meta.CreatedAt, &meta.UpdatedAt}, t.m.Dest(&v)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", t.m.Name, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// jsonText encodes v for a JSONB column.
func jsonText(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// jsonColumn decodes a JSONB column into dst. NULL leaves dst untouched.
type jsonColumn struct {
	dst any
}

func jsonInto(dst any) *jsonColumn { return &jsonColumn{dst: dst} }

func (j *jsonColumn) Scan(src any) error {
	var b []byte
	switch s := src.(type) {
	case nil:
		return nil
	case []byte:
		b = s
	case string:
		b = []byte(s)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	return json.Unmarshal(b, j.dst)
}

// jsonOrNull encodes raw for a nullable JSONB column.
func jsonOrNull(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
