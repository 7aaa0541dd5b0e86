package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/config"
	"github.com/dailygrace/dailygrace/internal/client/events"
	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/client/session"
	"github.com/dailygrace/dailygrace/internal/logging"
	"github.com/dailygrace/dailygrace/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTable is a remote table held in memory.
type memTable[T any, PT interface {
	*T
	models.Record
}] struct {
	mu   sync.Mutex
	rows map[string]map[string]T
}

func newMemTable[T any, PT interface {
	*T
	models.Record
}]() *memTable[T, PT] {
	return &memTable[T, PT]{rows: map[string]map[string]T{}}
}

func (m *memTable[T, PT]) put(uid string, v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows[uid] == nil {
		m.rows[uid] = map[string]T{}
	}
	m.rows[uid][PT(&v).GetMeta().ID] = v
}

func (m *memTable[T, PT]) Insert(_ context.Context, uid string, v *T) error {
	m.put(uid, *v)
	return nil
}

func (m *memTable[T, PT]) Update(_ context.Context, uid string, v *T) error {
	m.put(uid, *v)
	return nil
}

func (m *memTable[T, PT]) Delete(_ context.Context, uid, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows[uid], id)
	return nil
}

func (m *memTable[T, PT]) SelectAll(_ context.Context, uid string) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.rows[uid]))
	for _, v := range m.rows[uid] {
		out = append(out, v)
	}
	return out, nil
}

func (m *memTable[T, PT]) count(uid string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[uid])
}

type fakeAuth struct{ client.Offline }

func (fakeAuth) SignIn(_ context.Context, email, _ string) (*client.Session, error) {
	return &client.Session{UserID: "u1", Email: email, AccessToken: "at", RefreshToken: "rt"}, nil
}

func (fakeAuth) SignOut(context.Context, string) error { return nil }

type harness struct {
	app         *App
	meditations *memTable[models.MeditationNote, *models.MeditationNote]
	categories  *memTable[models.Category, *models.Category]
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SettleDelay = 0
	cfg.TimeZone = "UTC"

	h := &harness{
		meditations: newMemTable[models.MeditationNote](),
		categories:  newMemTable[models.Category](),
	}
	tables := client.OfflineTables()
	tables.Meditations = h.meditations
	tables.Categories = h.categories

	clock := timex.NewFakeClock(time.Date(2024, 4, 2, 7, 0, 0, 0, time.UTC))
	a, err := Wire(db, cfg, Backends{Auth: fakeAuth{}, Tables: tables, Cards: client.Offline{}}, clock, logging.Discard())
	require.NoError(t, err)
	a.closers = append(a.closers, db)
	t.Cleanup(func() { _ = a.Close() })

	h.app = a
	return h
}

func TestWire_OfflineJournaling(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.app

	_, err := a.Meditations.Create(ctx, models.MeditationNote{Title: "Morning", Content: "Ps 23"})
	require.NoError(t, err)
	_, err = a.Diaries.Create(ctx, models.Diary{Content: "quiet day"})
	require.NoError(t, err)

	entries, err := a.Feed.RecordsOnDate(ctx, "2024-04-02")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	a.tracker.Wait()
	assert.Zero(t, h.meditations.count("u1"), "nothing is mirrored while signed out")
}

func TestWire_LoginReconcilesThenMirrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.app

	remote := models.MeditationNote{
		Meta:  models.Meta{ID: "remote-1", CreatedAt: time.Date(2024, 4, 1, 7, 0, 0, 0, time.UTC), UpdatedAt: time.Date(2024, 4, 1, 7, 0, 0, 0, time.UTC)},
		Title: "From another device",
	}
	h.meditations.put("u1", remote)

	_, err := a.Gate.SignIn(ctx, "grace@example.com", "pw")
	require.NoError(t, err)
	a.Gate.Wait()

	got, err := a.Meditations.Get(ctx, "remote-1")
	require.NoError(t, err)
	assert.Equal(t, "From another device", got.Title)

	cats, err := a.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(models.Builtins()))

	created, err := a.Meditations.Create(ctx, models.MeditationNote{Title: "Evening"})
	require.NoError(t, err)
	a.tracker.Wait()
	assert.Equal(t, 2, h.meditations.count("u1"))

	rows, _ := h.meditations.SelectAll(ctx, "u1")
	ids := []string{rows[0].ID, rows[1].ID}
	assert.Contains(t, ids, created.ID)
}

func TestWire_DeferredActionRunsAfterLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.app

	var prompts []string
	a.Bus.Subscribe(events.LoginRequired, func(e events.Event) { prompts = append(prompts, e.ReturnTo) })

	ran := make(chan struct{}, 1)
	out := a.Gate.RequireAuth(ctx, func(context.Context) { ran <- struct{}{} }, "/cards")
	assert.Equal(t, session.Deferred, out)
	assert.Equal(t, []string{"/cards"}, prompts)

	_, err := a.Gate.SignIn(ctx, "grace@example.com", "pw")
	require.NoError(t, err)
	a.Gate.Wait()

	select {
	case <-ran:
	default:
		t.Fatal("deferred action did not run")
	}
}

func TestWire_CategoryChangesReachTheBus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var got []events.Event
	h.app.Bus.Subscribe(events.CategoriesUpdated, func(e events.Event) { got = append(got, e) })

	c, err := h.app.Categories.Create(ctx, models.Category{Name: "간증"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
}

func TestWire_RejectsBadPolicy(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ReconcilePolicy = "shrug"

	_, err := Wire(nil, cfg, OfflineBackends(), timex.SystemClock(), logging.Discard())
	require.Error(t, err)
}

func TestOfflineBackends_RefuseRemoteCalls(t *testing.T) {
	b := OfflineBackends()
	_, err := b.Auth.SignIn(context.Background(), "a@b.c", "pw")
	require.ErrorIs(t, err, client.ErrOffline)
}
