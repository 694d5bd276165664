package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/healthtracker/internal/dbx"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/followers"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/measurements"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/users"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/verifications"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same constructors inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	RollbackMigration(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Verifications(db dbx.DBTX) verifications.Repository
	Measurements(db dbx.DBTX) measurements.Repository
	Followers(db dbx.DBTX) followers.Repository
}
