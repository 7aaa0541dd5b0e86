package repomanager

import (
	"context"
	"database/sql"

	"github.com/dailygrace/dailygrace/internal/cloud/migrations"
	"github.com/dailygrace/dailygrace/internal/cloud/repositories/refreshtokens"
	"github.com/dailygrace/dailygrace/internal/cloud/repositories/users"
	"github.com/dailygrace/dailygrace/internal/dbx"
	"github.com/pressly/goose/v3"
)

// gooseUpContext is swapped in tests.
var gooseUpContext = goose.UpContext

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return gooseUpContext(ctx, db, ".")
}
