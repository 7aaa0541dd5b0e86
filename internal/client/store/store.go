package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/client/repositories/kv"
	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/dailygrace/dailygrace/internal/dbx"
	"github.com/dailygrace/dailygrace/internal/timex"
	"github.com/google/uuid"
)

// CollectionPrefix namespaces record collections in the kv table.
const CollectionPrefix = "collection."

// Patch is a partial update of a T.
type Patch[T any] interface {
	Apply(v *T, now time.Time)
}

// Mirror receives every committed mutation. See package mirror.
type Mirror[T any] interface {
	Insert(ctx context.Context, id string, v T)
	Update(ctx context.Context, id string, v T)
	Delete(ctx context.Context, id string)
}

type noMirror[T any] struct{}

func (noMirror[T]) Insert(context.Context, string, T) {}
func (noMirror[T]) Update(context.Context, string, T) {}
func (noMirror[T]) Delete(context.Context, string)    {}

// Hooks customize a Store per kind. Every field is optional.
type Hooks[T any] struct {
	// Compare orders List; the default is newest createdAt first.
	Compare func(a, b T) int

	// OldestFirst reverses List. Records sharing a createdAt then keep the
	// order they were created in, since the collection is stored newest
	// first.
	OldestFirst bool

	// OnCreate runs once on a new record after its envelope is stamped.
	OnCreate func(v *T, now time.Time)

	// Normalize runs on created and updated records before Validate.
	Normalize func(v *T)

	// Validate sees the collection without the record under test. It runs
	// inside the write transaction and must not touch the database.
	Validate func(others []T, v *T) error

	// Changed runs after a committed mutation; id is empty for bulk ones.
	Changed func(ctx context.Context, id string)
}

// Store is the local collection of one record kind.
type Store[T any, PT interface {
	*T
	models.Record
}] struct {
	kind   models.Kind
	key    string
	db     *sql.DB
	clock  timex.Clock
	mirror Mirror[T]
	hooks  Hooks[T]
	newID  func() string

	mu sync.Mutex
}

// New builds the store for kind. A nil mirror disables mirroring.
func New[T any, PT interface {
	*T
	models.Record
}](kind models.Kind, db *sql.DB, clock timex.Clock, mirror Mirror[T], hooks Hooks[T]) *Store[T, PT] {
	if mirror == nil {
		mirror = noMirror[T]{}
	}
	s := &Store[T, PT]{
		kind:   kind,
		key:    CollectionPrefix + string(kind),
		db:     db,
		clock:  clock,
		mirror: mirror,
		hooks:  hooks,
		newID:  uuid.NewString,
	}
	if s.hooks.Compare == nil {
		s.hooks.Compare = s.newestFirst
	}
	return s
}

func (s *Store[T, PT]) Kind() models.Kind { return s.kind }

func meta[T any, PT interface {
	*T
	models.Record
}](v *T) *models.Meta {
	return PT(v).GetMeta()
}

func (s *Store[T, PT]) newestFirst(a, b T) int {
	return meta[T, PT](&b).CreatedAt.Compare(meta[T, PT](&a).CreatedAt)
}

func (s *Store[T, PT]) load(ctx context.Context, db dbx.DBTX) ([]T, error) {
	raw, err := kv.NewSQLiteRepository(db).Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s collection: %w", s.kind, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *Store[T, PT]) save(ctx context.Context, db dbx.DBTX, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s collection: %w", s.kind, err)
	}
	return kv.NewSQLiteRepository(db).Set(ctx, s.key, raw)
}

func (s *Store[T, PT]) indexOf(items []T, id string) int {
	return slices.IndexFunc(items, func(v T) bool { return meta[T, PT](&v).ID == id })
}

func (s *Store[T, PT]) notFound(id string) error {
	return fmt.Errorf("%s %s: %w", s.kind, id, common.ErrorNotFound)
}

// List returns the whole collection in the kind's display order.
func (s *Store[T, PT]) List(ctx context.Context) ([]T, error) {
	items, err := s.load(ctx, s.db)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(items, s.hooks.Compare)
	if s.hooks.OldestFirst {
		slices.Reverse(items)
	}
	return items, nil
}

// Get returns common.ErrorNotFound (wrapped) for an unknown id.
func (s *Store[T, PT]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := s.load(ctx, s.db)
	if err != nil {
		return zero, err
	}
	i := s.indexOf(items, id)
	if i < 0 {
		return zero, s.notFound(id)
	}
	return items[i], nil
}

// Create stamps a fresh id and createdAt = updatedAt = now, prepends v to
// the collection and commits it. The cloud mirror is told after the commit
// and not awaited.
func (s *Store[T, PT]) Create(ctx context.Context, v T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	m := meta[T, PT](&v)
	m.ID = s.newID()
	m.CreatedAt = now
	m.UpdatedAt = now

	if s.hooks.OnCreate != nil {
		s.hooks.OnCreate(&v, now)
	}
	if s.hooks.Normalize != nil {
		s.hooks.Normalize(&v)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		items, err := s.load(ctx, tx)
		if err != nil {
			return err
		}
		if s.hooks.Validate != nil {
			if err := s.hooks.Validate(items, &v); err != nil {
				return err
			}
		}
		return s.save(ctx, tx, append([]T{v}, items...))
	})
	if err != nil {
		var zero T
		return zero, err
	}

	s.mirror.Insert(ctx, m.ID, v)
	s.changed(ctx, m.ID)
	return v, nil
}

// Update applies patch to the record with id and refreshes updatedAt, which
// never moves backwards. id and createdAt are preserved.
func (s *Store[T, PT]) Update(ctx context.Context, id string, patch Patch[T]) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out T
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		items, err := s.load(ctx, tx)
		if err != nil {
			return err
		}
		i := s.indexOf(items, id)
		if i < 0 {
			return s.notFound(id)
		}

		v := items[i]
		orig := *meta[T, PT](&v)

		now := s.clock.Now()
		if now.Before(orig.UpdatedAt) {
			now = orig.UpdatedAt
		}
		patch.Apply(&v, now)

		m := meta[T, PT](&v)
		m.ID, m.CreatedAt, m.UpdatedAt = orig.ID, orig.CreatedAt, orig.UpdatedAt
		m.Touch(now)

		if s.hooks.Normalize != nil {
			s.hooks.Normalize(&v)
		}
		if s.hooks.Validate != nil {
			others := slices.Delete(slices.Clone(items), i, i+1)
			if err := s.hooks.Validate(others, &v); err != nil {
				return err
			}
		}

		items[i] = v
		out = v
		return s.save(ctx, tx, items)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	s.mirror.Update(ctx, id, out)
	s.changed(ctx, id)
	return out, nil
}

// Remove deletes the record locally and asks the mirror to delete it
// remotely. Removing an unknown id changes nothing locally.
func (s *Store[T, PT]) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		items, err := s.load(ctx, tx)
		if err != nil {
			return err
		}
		i := s.indexOf(items, id)
		if i < 0 {
			return nil
		}
		removed = true
		return s.save(ctx, tx, slices.Delete(items, i, i+1))
	})
	if err != nil {
		return err
	}

	s.mirror.Delete(ctx, id)
	if removed {
		s.changed(ctx, id)
	}
	return nil
}

// ReplaceAll overwrites the collection with items, newest first. Nothing
// is mirrored: this is how the cloud copy comes back down.
func (s *Store[T, PT]) ReplaceAll(ctx context.Context, items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items = slices.Clone(items)
	if items == nil {
		items = []T{}
	}
	slices.SortStableFunc(items, s.newestFirst)

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.save(ctx, tx, items)
	}); err != nil {
		return err
	}
	s.changed(ctx, "")
	return nil
}

// Clear drops the collection from the device. Nothing is mirrored.
func (s *Store[T, PT]) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := kv.NewSQLiteRepository(s.db).Delete(ctx, s.key); err != nil {
		return err
	}
	s.changed(ctx, "")
	return nil
}

func (s *Store[T, PT]) changed(ctx context.Context, id string) {
	if s.hooks.Changed != nil {
		s.hooks.Changed(ctx, id)
	}
}
