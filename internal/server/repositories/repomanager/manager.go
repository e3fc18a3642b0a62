// Package repomanager vends repositories bound to a dbx.DBTX, so services can
// run several of them against the same transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vidmark/internal/dbx"
	"github.com/dmitrijs2005/vidmark/internal/server/repositories/bookmarks"
	"github.com/dmitrijs2005/vidmark/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/vidmark/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Bookmarks(db dbx.DBTX) bookmarks.Repository
}
