// Package services holds client services that combine a local repository
// with its cloud counterpart.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/mirror"
	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/client/repositories/cards"
	"github.com/dailygrace/dailygrace/internal/client/repositories/kv"
	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/dailygrace/dailygrace/internal/logging"
	"github.com/dailygrace/dailygrace/internal/timex"
	"github.com/google/uuid"
)

// kv keys of the flat card list older builds kept, and of the flag set
// once it has been moved into the card table.
const (
	LegacyCardsKey   = "legacy.cards"
	CardsMigratedKey = "cards.migrated"
)

// CardService stores rendered verse cards on the device first and in the
// cloud when someone is signed in.
//
// Contract:
//   - Save/Delete: local write is returned; the cloud write is best effort.
//   - GetAll: local and cloud merged by id, cloud winning; cloud-only cards
//     are copied to the device as a side effect.
//   - MigrateLegacy: runs at most once per device.
//   - Clear: drops the local tier only.
type CardService interface {
	Save(ctx context.Context, card models.VerseCard) (models.VerseCard, error)
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]models.VerseCard, error)
	MigrateLegacy(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

type cardService struct {
	db      *sql.DB
	cloud   client.CardBackend
	ident   mirror.Identity
	tracker *mirror.Tracker
	clock   timex.Clock
	log     logging.Logger
}

func NewCardService(db *sql.DB, cloud client.CardBackend, ident mirror.Identity, tracker *mirror.Tracker,
	clock timex.Clock, log logging.Logger) CardService {
	return &cardService{
		db:      db,
		cloud:   cloud,
		ident:   ident,
		tracker: tracker,
		clock:   clock,
		log:     log.With("component", "cards"),
	}
}

func (s *cardService) repo() cards.Repository {
	return cards.NewSQLiteRepository(s.db)
}

// Save keeps a given id and createdAt so re-saving is an update. A re-saved
// card sent without createdAt keeps the stored one; a createdAt in the
// future is pulled back to now.
func (s *cardService) Save(ctx context.Context, card models.VerseCard) (models.VerseCard, error) {

	if err := card.Validate(); err != nil {
		return models.VerseCard{}, err
	}

	now := s.clock.Now()
	if card.ID == "" {
		card.ID = uuid.NewString()
	} else if card.CreatedAt.IsZero() {
		prev, err := s.repo().GetByID(ctx, card.ID)
		switch {
		case err == nil:
			card.CreatedAt = prev.CreatedAt
			card.UpdatedAt = prev.UpdatedAt
		case !errors.Is(err, common.ErrorNotFound):
			return models.VerseCard{}, fmt.Errorf("error loading card: %w", err)
		}
	}
	if card.CreatedAt.IsZero() || card.CreatedAt.After(now) {
		card.CreatedAt = now
	}
	card.Touch(now)

	if err := s.repo().Put(ctx, &card); err != nil {
		return models.VerseCard{}, fmt.Errorf("error saving card: %w", err)
	}

	c := card
	s.push(ctx, "save", card.ID, func(ctx context.Context, uid string) error {
		return s.cloud.Save(ctx, uid, &c)
	})
	return card, nil
}

func (s *cardService) Delete(ctx context.Context, id string) error {

	if err := s.repo().DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("error deleting card: %w", err)
	}

	s.push(ctx, "delete", id, func(ctx context.Context, uid string) error {
		return s.cloud.Delete(ctx, uid, id)
	})
	return nil
}

func (s *cardService) push(ctx context.Context, op, id string, call func(ctx context.Context, uid string) error) {
	uid, ok := s.ident.UserID()
	if !ok {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.tracker.Go(func() {
		if err := call(ctx, uid); err != nil {
			s.log.Warn(ctx, "cloud card write failed", "op", op, "id", id, "error", err)
		}
	})
}

// GetAll returns every card newest first. A failing cloud leaves the
// local cards.
func (s *cardService) GetAll(ctx context.Context) ([]models.VerseCard, error) {

	local, err := s.repo().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving cards: %w", err)
	}

	uid, ok := s.ident.UserID()
	if !ok {
		return local, nil
	}
	remote, err := s.cloud.List(ctx, uid)
	if err != nil {
		s.log.Warn(ctx, "cloud card list failed", "error", err)
		return local, nil
	}

	byID := make(map[string]models.VerseCard, len(local)+len(remote))
	for _, c := range local {
		byID[c.ID] = c
	}
	var backfill []models.VerseCard
	for _, c := range remote {
		if _, ok := byID[c.ID]; !ok {
			backfill = append(backfill, c)
		}
		byID[c.ID] = c
	}

	for i := range backfill {
		if err := s.repo().Put(ctx, &backfill[i]); err != nil {
			s.log.Warn(ctx, "card backfill failed", "id", backfill[i].ID, "error", err)
		}
	}
	if len(backfill) > 0 {
		s.log.Debug(ctx, "backfilled cards", "count", len(backfill))
	}

	out := make([]models.VerseCard, 0, len(byID))
	for _, c := range byID {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.VerseCard) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// MigrateLegacy moves the flat card list older builds kept in the kv table
// into the card table, then sets the migrated flag. Interrupted runs redo
// the cards already copied, which is harmless. A card whose image cannot
// be decoded is kept without it.
func (s *cardService) MigrateLegacy(ctx context.Context) (int, error) {

	meta := kv.NewSQLiteRepository(s.db)

	done, err := meta.Get(ctx, CardsMigratedKey)
	if err != nil {
		return 0, fmt.Errorf("error reading migration flag: %w", err)
	}
	if done != nil {
		return 0, nil
	}

	raw, err := meta.Get(ctx, LegacyCardsKey)
	if err != nil {
		return 0, fmt.Errorf("error reading legacy cards: %w", err)
	}

	var legacy []models.VerseCard
	if raw != nil {
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return 0, fmt.Errorf("error decoding legacy cards: %w", err)
		}
	}

	for _, c := range legacy {
		if !c.Ratio.Valid() {
			c.Ratio = models.Ratio1x1
		}
		if err := c.Validate(); err != nil {
			s.log.Warn(ctx, "legacy card image dropped", "id", c.ID, "error", err)
			c.ImageDataURL = ""
		}
		if _, err := s.Save(ctx, c); err != nil {
			return 0, fmt.Errorf("error migrating card %s: %w", c.ID, err)
		}
	}

	if err := meta.Set(ctx, CardsMigratedKey, []byte("1")); err != nil {
		return 0, fmt.Errorf("error setting migration flag: %w", err)
	}
	s.log.Info(ctx, "legacy cards migrated", "count", len(legacy))
	return len(legacy), nil
}

func (s *cardService) Clear(ctx context.Context) error {
	if err := s.repo().Clear(ctx); err != nil {
		return fmt.Errorf("error clearing cards: %w", err)
	}
	return nil
}
