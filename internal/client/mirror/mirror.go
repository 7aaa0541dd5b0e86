// Package mirror pushes local mutations to the hosted backend on a best
// effort basis.
//
// A mirror call never blocks and never fails the local operation: it
// snapshots the signed-in user id, hands the remote write to a goroutine and
// returns. Remote errors are logged and dropped. No user signed in means no
// call at all. Two calls for the same record may land out of order.
package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/logging"
)

// Identity reports the signed-in user at the moment of the call.
type Identity interface {
	UserID() (string, bool)
}

// Tracker counts in-flight mirror goroutines so shutdown can flush them.
type Tracker struct {
	wg sync.WaitGroup
}

func (t *Tracker) Go(fn func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn()
	}()
}

// Wait blocks until every goroutine started with Go has returned.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Mirror replays one kind's mutations against its remote table.
type Mirror[T any] struct {
	kind    models.Kind
	table   client.RemoteTable[T]
	ident   Identity
	tracker *Tracker
	log     logging.Logger
	timeout time.Duration
}

type Option[T any] func(*Mirror[T])

// WithTimeout bounds each remote call. Zero leaves calls unbounded.
func WithTimeout[T any](d time.Duration) Option[T] {
	return func(m *Mirror[T]) { m.timeout = d }
}

func New[T any](kind models.Kind, table client.RemoteTable[T], ident Identity, tracker *Tracker, log logging.Logger, opts ...Option[T]) *Mirror[T] {
	m := &Mirror[T]{
		kind:    kind,
		table:   table,
		ident:   ident,
		tracker: tracker,
		log:     log.With("kind", string(kind)),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Mirror[T]) Insert(ctx context.Context, id string, v T) {
	m.run(ctx, "insert", id, func(ctx context.Context, uid string) error {
		return m.table.Insert(ctx, uid, &v)
	})
}

func (m *Mirror[T]) Update(ctx context.Context, id string, v T) {
	m.run(ctx, "update", id, func(ctx context.Context, uid string) error {
		return m.table.Update(ctx, uid, &v)
	})
}

func (m *Mirror[T]) Delete(ctx context.Context, id string) {
	m.run(ctx, "delete", id, func(ctx context.Context, uid string) error {
		return m.table.Delete(ctx, uid, id)
	})
}

func (m *Mirror[T]) run(ctx context.Context, op, id string, call func(ctx context.Context, uid string) error) {
	uid, ok := m.ident.UserID()
	if !ok {
		return
	}

	// the caller's context usually ends with the request that made the
	// local write; the remote write outlives it
	ctx = context.WithoutCancel(ctx)

	m.tracker.Go(func() {
		if m.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.timeout)
			defer cancel()
		}

		if err := call(ctx, uid); err != nil {
			m.log.Warn(ctx, "cloud mirror failed", "op", op, "id", id, "user", uid, "error", err)
			return
		}
		m.log.Debug(ctx, "cloud mirror ok", "op", op, "id", id)
	})
}
