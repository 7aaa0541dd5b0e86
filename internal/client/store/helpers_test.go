package store

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/timex"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 4, 2, 7, 0, 0, 0, time.UTC)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newClock() *timex.FakeClock {
	return timex.NewFakeClock(t0)
}

type mirrorCall struct {
	op string
	id string
}

// recordingMirror captures what a store hands to the cloud mirror.
type recordingMirror[T any] struct {
	mu    sync.Mutex
	calls []mirrorCall
	last  T
}

func (r *recordingMirror[T]) Insert(_ context.Context, id string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, mirrorCall{"insert", id})
	r.last = v
}

func (r *recordingMirror[T]) Update(_ context.Context, id string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, mirrorCall{"update", id})
	r.last = v
}

func (r *recordingMirror[T]) Delete(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, mirrorCall{"delete", id})
}

func (r *recordingMirror[T]) snapshot() []mirrorCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mirrorCall(nil), r.calls...)
}

func ptr[T any](v T) *T { return &v }
