// Package cloud connects the client to the hosted backend: Postgres for
// accounts and journal tables, S3 compatible storage for card images.
package cloud

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/cloud/blobs"
	"github.com/dailygrace/dailygrace/internal/cloud/repositories/repomanager"
	"github.com/dailygrace/dailygrace/internal/cloud/repositories/tables"
	"github.com/dailygrace/dailygrace/internal/cloud/services"
	"github.com/dailygrace/dailygrace/internal/logging"
	"github.com/dailygrace/dailygrace/internal/timex"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Options struct {
	DSN             string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	Bucket string
	S3     blobs.Options

	Clock timex.Clock
}

// imagesEnabled reports whether card images have somewhere to go. Without
// an endpoint or explicit keys the cards stay on the device.
func (o Options) imagesEnabled() bool {
	return o.Bucket != "" && (o.S3.Endpoint != "" || o.S3.AccessKey != "")
}

// Backend bundles the hosted services the client talks to.
type Backend struct {
	Auth   client.AuthBackend
	Tables client.Tables
	Cards  client.CardBackend

	db *sql.DB
}

// Open connects to Postgres, applies the hosted schema and wires the
// services on top of it.
func Open(ctx context.Context, opts Options, log logging.Logger) (*Backend, error) {
	db, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cloud migrations: %w", err)
	}

	b, err := wire(ctx, db, rm, opts, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func wire(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager, opts Options, log logging.Logger) (*Backend, error) {
	log = log.With("component", "cloud")

	b := &Backend{
		Tables: tables.All(db),
		Cards:  client.Offline{},
		db:     db,
	}

	accountOpts := services.AccountOptions{
		JWTSecret:       []byte(opts.JWTSecret),
		AccessTokenTTL:  opts.AccessTokenTTL,
		RefreshTokenTTL: opts.RefreshTokenTTL,
		Clock:           opts.Clock,
	}

	if opts.imagesEnabled() {
		s3c, err := blobs.NewS3Client(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		store := blobs.New(s3c, opts.Bucket)
		accountOpts.Blobs = store
		b.Cards = services.NewCardService(tables.New[tables.CardRow](db, tables.Cards), store)
	} else {
		log.Info(ctx, "no object storage configured, verse cards stay on this device")
	}

	b.Auth = services.NewAccountService(db, rm, log, accountOpts)
	return b, nil
}

func (b *Backend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
