// Package app assembles the journal client: local stores with their cloud
// mirrors, the session gate, the login reconciler, the card store and the
// feed, all sharing one SQLite database.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/config"
	"github.com/dailygrace/dailygrace/internal/client/events"
	"github.com/dailygrace/dailygrace/internal/client/feed"
	"github.com/dailygrace/dailygrace/internal/client/mirror"
	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/client/reconcile"
	"github.com/dailygrace/dailygrace/internal/client/services"
	"github.com/dailygrace/dailygrace/internal/client/session"
	"github.com/dailygrace/dailygrace/internal/client/store"
	"github.com/dailygrace/dailygrace/internal/cloud"
	"github.com/dailygrace/dailygrace/internal/cloud/blobs"
	"github.com/dailygrace/dailygrace/internal/logging"
	"github.com/dailygrace/dailygrace/internal/timex"
)

// Backends are the remote services the client mirrors to. Offline values
// are used when no cloud is configured.
type Backends struct {
	Auth   client.AuthBackend
	Tables client.Tables
	Cards  client.CardBackend
}

// OfflineBackends refuse every remote call.
func OfflineBackends() Backends {
	return Backends{Auth: client.Offline{}, Tables: client.OfflineTables(), Cards: client.Offline{}}
}

type App struct {
	Config *config.Config
	Log    logging.Logger
	DB     *sql.DB
	Bus    *events.Bus

	Meditations *store.Meditations
	Prayers     *store.Prayers
	Gratitudes  *store.Gratitudes
	Diaries     *store.Diaries
	Records     *store.Records
	Categories  *store.Categories
	Cards       services.CardService

	Gate       *session.Gate
	Reconciler *reconcile.Reconciler
	Feed       *feed.Feed

	tracker *mirror.Tracker
	closers []io.Closer
}

// gateIdentity lets the mirrors, built before the gate, ask it for the
// signed-in user.
type gateIdentity struct {
	gate *session.Gate
}

func (i *gateIdentity) UserID() (string, bool) {
	if i.gate == nil {
		return "", false
	}
	return i.gate.UserID()
}

// New opens the local database and, when cfg names one, the hosted
// backend, then wires every component. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, logCloser := logging.New(logging.Options{File: cfg.LogFile, MaxSizeMB: 10, MaxBackups: 3, Debug: cfg.Debug})

	db, err := client.InitDatabase(ctx, cfg.DBPath)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	closers := []io.Closer{db}
	backends := OfflineBackends()
	if cfg.CloudEnabled() {
		b, err := cloud.Open(ctx, CloudOptions(cfg), log)
		if err != nil {
			_ = db.Close()
			_ = logCloser.Close()
			return nil, err
		}
		backends = Backends{Auth: b.Auth, Tables: b.Tables, Cards: b.Cards}
		closers = append(closers, b)
	} else {
		log.Info(ctx, "no cloud configured, running offline")
	}
	closers = append(closers, logCloser)

	a, err := Wire(db, cfg, backends, timex.SystemClock(), log)
	if err != nil {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, err
	}
	a.closers = closers
	return a, nil
}

// CloudOptions maps the client configuration onto the hosted backend.
func CloudOptions(cfg *config.Config) cloud.Options {
	return cloud.Options{
		DSN:             cfg.CloudDSN,
		JWTSecret:       cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		Bucket:          cfg.S3Bucket,
		S3: blobs.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		},
	}
}

func mirrorFor[T any](kind models.Kind, table client.RemoteTable[T], ident mirror.Identity, tr *mirror.Tracker, log logging.Logger, cfg *config.Config) *mirror.Mirror[T] {
	return mirror.New(kind, table, ident, tr, log, mirror.WithTimeout[T](cfg.MirrorTimeout))
}

// Wire builds the client on an already migrated database. It does not
// touch the network; call Start for that.
func Wire(db *sql.DB, cfg *config.Config, b Backends, clock timex.Clock, log logging.Logger) (*App, error) {
	policy, err := reconcile.ParsePolicy(cfg.ReconcilePolicy)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Log: log, DB: db, Bus: events.NewBus(), tracker: &mirror.Tracker{}}
	ident := &gateIdentity{}

	a.Meditations = store.NewMeditations(db, clock, mirrorFor(models.KindMeditation, b.Tables.Meditations, ident, a.tracker, log, cfg))
	a.Prayers = store.NewPrayers(db, clock, mirrorFor(models.KindPrayer, b.Tables.Prayers, ident, a.tracker, log, cfg))
	a.Gratitudes = store.NewGratitudes(db, clock, mirrorFor(models.KindGratitude, b.Tables.Gratitudes, ident, a.tracker, log, cfg))
	a.Diaries = store.NewDiaries(db, clock, mirrorFor(models.KindDiary, b.Tables.Diaries, ident, a.tracker, log, cfg))
	a.Records = store.NewRecords(db, clock, mirrorFor(models.KindRecord, b.Tables.Records, ident, a.tracker, log, cfg))
	a.Categories = store.NewCategories(db, clock, mirrorFor(models.KindCategory, b.Tables.Categories, ident, a.tracker, log, cfg), a.Bus)
	a.Cards = services.NewCardService(db, b.Cards, ident, a.tracker, clock, log)

	a.Gate = session.NewGate(db, b.Auth, log, session.Options{
		SettleDelay: cfg.SettleDelay,
		Prompt: func(returnTo string) {
			a.Bus.Publish(events.Event{Topic: events.LoginRequired, ReturnTo: returnTo})
		},
		Assets: a.Cards,
		Collections: []session.Clearer{
			a.Meditations, a.Prayers, a.Gratitudes, a.Diaries, a.Records, a.Categories,
		},
	})
	ident.gate = a.Gate

	a.Reconciler = reconcile.New(policy, log)
	reconcile.Add[models.MeditationNote](a.Reconciler, models.KindMeditation, b.Tables.Meditations, a.Meditations)
	reconcile.Add[models.PrayerNote](a.Reconciler, models.KindPrayer, b.Tables.Prayers, a.Prayers)
	reconcile.Add[models.GratitudeNote](a.Reconciler, models.KindGratitude, b.Tables.Gratitudes, a.Gratitudes)
	reconcile.Add[models.Diary](a.Reconciler, models.KindDiary, b.Tables.Diaries, a.Diaries)
	reconcile.Add[models.CustomRecord](a.Reconciler, models.KindRecord, b.Tables.Records, a.Records)
	reconcile.Add[models.Category](a.Reconciler, models.KindCategory, b.Tables.Categories, a.Categories)
	a.Gate.OnLogin(a.Reconciler.OnLogin)

	a.Feed = feed.New(feed.Sources{
		Meditations: a.Meditations,
		Prayers:     a.Prayers,
		Gratitudes:  a.Gratitudes,
		Diaries:     a.Diaries,
		Records:     a.Records,
		Categories:  a.Categories,
	}, clock, loc)

	return a, nil
}

// Start restores the persisted session and moves cards kept by older
// builds into the card table. Neither failure stops the client.
func (a *App) Start(ctx context.Context) {
	if err := a.Gate.Start(ctx); err != nil {
		a.Log.Warn(ctx, "session not restored", "error", err)
	}
	n, err := a.Cards.MigrateLegacy(ctx)
	if err != nil {
		a.Log.Warn(ctx, "legacy cards not migrated", "error", err)
	} else if n > 0 {
		a.Log.Info(ctx, "legacy cards migrated", "count", n)
	}
}

// Close waits for login hooks and in-flight mirror writes, then releases
// the database, the cloud connection and the log file.
func (a *App) Close() error {
	a.Gate.Wait()
	a.tracker.Wait()

	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
