package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/linkkeeper/internal/dbx"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/links"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a database handle, which may
// be a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Links(db dbx.DBTX) links.Repository
}
