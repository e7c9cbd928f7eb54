package repomanager

import (
	"context"
	"database/sql"

	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/logs"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/masterdata"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/posts"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/resettokens"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/roles"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so services can run
// them either on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	Posts(db dbx.DBTX) posts.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
	MasterData(db dbx.DBTX) masterdata.Repository
	Logs(db dbx.DBTX) logs.Repository
}
