// Package repomanager defines the factory that vends repository
// implementations bound to a database handle. Services hold a manager plus
// a *sql.DB and can rebind repositories onto a transaction via dbx.WithTx.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/ttttiu/WAS/internal/dbx"
	"github.com/ttttiu/WAS/internal/server/repositories/users"
)

type RepositoryManager interface {
	// Users returns a users.Repository bound to the provided handle,
	// which may be a *sql.DB or an open transaction.
	Users(db dbx.DBTX) users.Repository

	// RunMigrations brings the schema up to date.
	RunMigrations(ctx context.Context, db *sql.DB) error
}
