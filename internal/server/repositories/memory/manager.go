package memory

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/linkkeeper/internal/dbx"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/links"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/users"
)

// RepositoryManager hands out the same in-memory repositories regardless of
// the database handle, so transactions are not isolated.
type RepositoryManager struct {
	UsersRepo *UsersRepository
	LinksRepo *LinksRepository
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{
		UsersRepo: NewUsersRepository(),
		LinksRepo: NewLinksRepository(),
	}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository { return m.UsersRepo }

func (m *RepositoryManager) Links(dbx.DBTX) links.Repository { return m.LinksRepo }
