package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/cloud/repositories/tables"
	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTable struct {
	client.OfflineTable[tables.CardRow]
	rows      map[string]tables.CardRow
	insertErr error
}

func newMemTable() *memTable { return &memTable{rows: map[string]tables.CardRow{}} }

func (m *memTable) Insert(_ context.Context, uid string, v *tables.CardRow) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.rows[uid+"/"+v.ID] = *v
	return nil
}

func (m *memTable) Delete(_ context.Context, uid, id string) error {
	delete(m.rows, uid+"/"+id)
	return nil
}

func (m *memTable) SelectAll(_ context.Context, uid string) ([]tables.CardRow, error) {
	var out []tables.CardRow
	for k, r := range m.rows {
		if strings.HasPrefix(k, uid+"/") {
			out = append(out, r)
		}
	}
	return out, nil
}

type memImages struct {
	objects map[string][]byte
	mimes   map[string]string
	getErr  error
}

func newMemImages() *memImages {
	return &memImages{objects: map[string][]byte{}, mimes: map[string]string{}}
}

func (m *memImages) Put(_ context.Context, key, ct string, data []byte) error {
	m.objects[key] = data
	m.mimes[key] = ct
	return nil
}

func (m *memImages) Get(_ context.Context, key string) (string, []byte, error) {
	if m.getErr != nil {
		return "", nil, m.getErr
	}
	d, ok := m.objects[key]
	if !ok {
		return "", nil, common.ErrorNotFound
	}
	return m.mimes[key], d, nil
}

func (m *memImages) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func card(id string) *models.VerseCard {
	t := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return &models.VerseCard{
		Meta:         models.Meta{ID: id, CreatedAt: t, UpdatedAt: t},
		Ratio:        models.Ratio4x5,
		Text:         "Be still",
		Ref:          "Ps 46:10",
		ImageDataURL: models.FormatDataURL("image/png", []byte("png-bytes")),
	}
}

func TestCardService_SaveSplitsImageFromRow(t *testing.T) {
	tbl, imgs := newMemTable(), newMemImages()
	s := NewCardService(tbl, imgs)

	require.NoError(t, s.Save(context.Background(), "u1", card("c1")))

	row := tbl.rows["u1/c1"]
	assert.Empty(t, row.ImageDataURL)
	assert.Equal(t, "users/u1/cards/c1", row.ImageKey)
	assert.Equal(t, "image/png", row.ImageMime)
	assert.Equal(t, []byte("png-bytes"), imgs.objects["users/u1/cards/c1"])
}

func TestCardService_ListInlinesImages(t *testing.T) {
	tbl, imgs := newMemTable(), newMemImages()
	s := NewCardService(tbl, imgs)
	ctx := context.Background()

	orig := card("c1")
	require.NoError(t, s.Save(ctx, "u1", orig))
	require.NoError(t, s.Save(ctx, "u2", card("c2")))

	got, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *orig, got[0])
}

func TestCardService_ListToleratesMissingImage(t *testing.T) {
	tbl, imgs := newMemTable(), newMemImages()
	s := NewCardService(tbl, imgs)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "u1", card("c1")))
	delete(imgs.objects, "users/u1/cards/c1")

	got, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].ImageDataURL)

	imgs.getErr = errors.New("timeout")
	_, err = s.List(ctx, "u1")
	require.ErrorContains(t, err, "timeout")
}

func TestCardService_SaveWithoutImage(t *testing.T) {
	tbl, imgs := newMemTable(), newMemImages()
	s := NewCardService(tbl, imgs)

	c := card("c1")
	c.ImageDataURL = ""
	require.NoError(t, s.Save(context.Background(), "u1", c))
	assert.Empty(t, tbl.rows["u1/c1"].ImageKey)
	assert.Empty(t, imgs.objects)
}

func TestCardService_SaveRowFailure(t *testing.T) {
	tbl, imgs := newMemTable(), newMemImages()
	tbl.insertErr = errors.New("db down")
	s := NewCardService(tbl, imgs)

	err := s.Save(context.Background(), "u1", card("c1"))
	require.ErrorContains(t, err, "db down")
}

func TestCardService_Delete(t *testing.T) {
	tbl, imgs := newMemTable(), newMemImages()
	s := NewCardService(tbl, imgs)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "u1", card("c1")))
	require.NoError(t, s.Delete(ctx, "u1", "c1"))
	assert.Empty(t, tbl.rows)
	assert.Empty(t, imgs.objects)
}
