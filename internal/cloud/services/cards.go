package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/cloud/blobs"
	"github.com/dailygrace/dailygrace/internal/cloud/repositories/tables"
	"github.com/dailygrace/dailygrace/internal/common"
)

// ImageStore keeps rendered card images. *blobs.Store implements it.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) (string, []byte, error)
	Delete(ctx context.Context, key string) error
}

// CardService is the hosted tier of the card store: metadata rows in
// verse_cards, image bytes in object storage. It satisfies
// client.CardBackend.
type CardService struct {
	table  client.RemoteTable[tables.CardRow]
	images ImageStore
}

var _ client.CardBackend = (*CardService)(nil)

func NewCardService(table client.RemoteTable[tables.CardRow], images ImageStore) *CardService {
	return &CardService{table: table, images: images}
}

// Save uploads the image first so a stored row never points at a missing
// object.
func (s *CardService) Save(ctx context.Context, userID string, c *models.VerseCard) error {
	row := tables.CardRow{VerseCard: *c}
	row.ImageDataURL = ""

	if c.ImageDataURL != "" {
		mime, data, err := models.ParseDataURL(c.ImageDataURL)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		row.ImageKey = blobs.CardKey(userID, c.ID)
		row.ImageMime = mime
		if err := s.images.Put(ctx, row.ImageKey, mime, data); err != nil {
			return fmt.Errorf("error uploading card image: %w", err)
		}
	}

	if err := s.table.Insert(ctx, userID, &row); err != nil {
		return fmt.Errorf("error saving card: %w", err)
	}
	return nil
}

func (s *CardService) Delete(ctx context.Context, userID, id string) error {
	if err := s.table.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("error deleting card: %w", err)
	}
	if err := s.images.Delete(ctx, blobs.CardKey(userID, id)); err != nil {
		return fmt.Errorf("error deleting card image: %w", err)
	}
	return nil
}

// List returns the user's cards newest first with their images inlined
// as data URLs. A row whose image has gone missing comes back without one.
func (s *CardService) List(ctx context.Context, userID string) ([]models.VerseCard, error) {
	rows, err := s.table.SelectAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing cards: %w", err)
	}

	out := make([]models.VerseCard, 0, len(rows))
	for _, r := range rows {
		c := r.VerseCard
		if r.ImageKey != "" {
			mime, data, err := s.images.Get(ctx, r.ImageKey)
			switch {
			case err == nil:
				if mime == "" {
					mime = r.ImageMime
				}
				c.ImageDataURL = models.FormatDataURL(mime, data)
			case !errors.Is(err, common.ErrorNotFound):
				return nil, fmt.Errorf("error fetching card image: %w", err)
			}
		}
		out = append(out, c)
	}
	return out, nil
}
