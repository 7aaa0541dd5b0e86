package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/mirror"
	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/client/repositories/cards"
	"github.com/dailygrace/dailygrace/internal/client/repositories/kv"
	"github.com/dailygrace/dailygrace/internal/logging"
	"github.com/dailygrace/dailygrace/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type ident string

func (i ident) UserID() (string, bool) { return string(i), i != "" }

type fakeCloud struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
	list    []models.VerseCard
	listErr error
	saveErr error
}

func (f *fakeCloud) Save(_ context.Context, _ string, c *models.VerseCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, c.ID)
	return f.saveErr
}

func (f *fakeCloud) Delete(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCloud) List(context.Context, string) ([]models.VerseCard, error) {
	return f.list, f.listErr
}

type fixture struct {
	svc     CardService
	db      *sql.DB
	cloud   *fakeCloud
	tracker *mirror.Tracker
	clock   *timex.FakeClock
}

func setup(t *testing.T, user string) *fixture {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{db: db, cloud: &fakeCloud{}, tracker: &mirror.Tracker{}, clock: timex.NewFakeClock(t0)}
	f.svc = NewCardService(db, f.cloud, ident(user), f.tracker, f.clock, logging.Discard())
	return f
}

func card(id string, created time.Time, text string) models.VerseCard {
	return models.VerseCard{Meta: models.Meta{ID: id, CreatedAt: created, UpdatedAt: created}, Ratio: models.Ratio4x5, Text: text}
}

func TestCardService_SaveLocalFirst(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "u1")
	f.cloud.saveErr = errors.New("bucket gone")

	saved, err := f.svc.Save(ctx, models.VerseCard{Ratio: models.Ratio1x1, Text: "Be still"})
	require.NoError(t, err)
	f.tracker.Wait()

	require.NotEmpty(t, saved.ID)
	assert.Equal(t, t0, saved.CreatedAt)
	assert.Equal(t, []string{saved.ID}, f.cloud.saved)

	got, err := cards.NewSQLiteRepository(f.db).GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Be still", got.Text)
}

func TestCardService_SaveRejectsBadRatio(t *testing.T) {
	f := setup(t, "")
	_, err := f.svc.Save(context.Background(), models.VerseCard{Ratio: "2:1"})
	require.Error(t, err)
}

func TestCardService_SaveClampsFutureCreatedAt(t *testing.T) {
	f := setup(t, "")

	saved, err := f.svc.Save(context.Background(), card("c1", t0.Add(time.Hour), "later"))
	require.NoError(t, err)
	assert.Equal(t, t0, saved.CreatedAt)
	assert.False(t, saved.CreatedAt.After(saved.UpdatedAt))
}

func TestCardService_ResaveKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "")

	first, err := f.svc.Save(ctx, models.VerseCard{Ratio: models.Ratio1x1, Text: "draft"})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	edited, err := f.svc.Save(ctx, models.VerseCard{Meta: models.Meta{ID: first.ID}, Ratio: models.Ratio1x1, Text: "final"})
	require.NoError(t, err)
	assert.Equal(t, t0, edited.CreatedAt.UTC())
	assert.Equal(t, t0.Add(time.Hour), edited.UpdatedAt.UTC())
}

func TestCardService_SignedOutStaysLocal(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "")

	c, err := f.svc.Save(ctx, card("", time.Time{}, "x"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, c.ID))
	f.tracker.Wait()

	assert.Empty(t, f.cloud.saved)
	assert.Empty(t, f.cloud.deleted)
}

func TestCardService_DeleteIsMirrored(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "u1")

	require.NoError(t, f.svc.Delete(ctx, "missing"))
	f.tracker.Wait()
	assert.Equal(t, []string{"missing"}, f.cloud.deleted)
}

func TestCardService_GetAllMergesCloudWins(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "u1")
	repo := cards.NewSQLiteRepository(f.db)

	local := card("shared", t0, "local text")
	require.NoError(t, repo.Put(ctx, &local))
	onlyLocal := card("local", t0.Add(-time.Hour), "mine")
	require.NoError(t, repo.Put(ctx, &onlyLocal))

	f.cloud.list = []models.VerseCard{
		card("shared", t0, "cloud text"),
		card("remote", t0.Add(time.Hour), "from another device"),
	}

	all, err := f.svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "remote", all[0].ID)
	assert.Equal(t, "cloud text", all[1].Text)
	assert.Equal(t, "local", all[2].ID)

	// cloud-only card was cached locally
	cached, err := repo.GetByID(ctx, "remote")
	require.NoError(t, err)
	assert.Equal(t, "from another device", cached.Text)
}

func TestCardService_GetAllCloudFailure(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "u1")
	f.cloud.listErr = errors.New("timeout")

	_, err := f.svc.Save(ctx, card("a", t0, "x"))
	require.NoError(t, err)
	f.tracker.Wait()

	all, err := f.svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCardService_MigrateLegacyOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "")
	meta := kv.NewSQLiteRepository(f.db)

	legacy := []models.VerseCard{card("old1", t0.Add(-48*time.Hour), "a"), card("old2", t0.Add(-24*time.Hour), "b")}
	legacy[1].Ratio = ""
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, meta.Set(ctx, LegacyCardsKey, raw))

	n, err := f.svc.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := f.svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "old2", all[0].ID)
	assert.Equal(t, t0.Add(-24*time.Hour), all[0].CreatedAt.UTC())
	assert.Equal(t, models.Ratio1x1, all[0].Ratio)

	// second run is a no-op even if the card table was emptied
	require.NoError(t, f.svc.Clear(ctx))
	n, err = f.svc.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	all, err = f.svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCardService_MigrateKeepsCardWithBrokenImage(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "")
	meta := kv.NewSQLiteRepository(f.db)

	bad := card("bad", t0.Add(-48*time.Hour), "a")
	bad.ImageDataURL = "data:image/png;base64,@@@"
	legacy := []models.VerseCard{bad, card("good", t0.Add(-24*time.Hour), "b")}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, meta.Set(ctx, LegacyCardsKey, raw))

	n, err := f.svc.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := f.svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bad", all[1].ID)
	assert.Empty(t, all[1].ImageDataURL)

	flag, err := meta.Get(ctx, CardsMigratedKey)
	require.NoError(t, err)
	assert.NotNil(t, flag)
}

func TestCardService_MigrateWithoutLegacyData(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "")

	n, err := f.svc.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	flag, err := kv.NewSQLiteRepository(f.db).Get(ctx, CardsMigratedKey)
	require.NoError(t, err)
	assert.NotNil(t, flag)
}
