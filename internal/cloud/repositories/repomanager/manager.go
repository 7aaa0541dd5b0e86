// Package repomanager hands out repositories bound to a connection or a
// transaction, and migrates the hosted schema.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dailygrace/dailygrace/internal/cloud/repositories/refreshtokens"
	"github.com/dailygrace/dailygrace/internal/cloud/repositories/users"
	"github.com/dailygrace/dailygrace/internal/dbx"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
