package admin

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/healthtracker/internal/logging"
	"github.com/dmitrijs2005/healthtracker/internal/server/config"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/healthtracker/internal/server/services"
)

// Migrator applies or reverts schema migrations.
type Migrator interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
}

// Maintenance is implemented by *services.MaintenanceService.
type Maintenance interface {
	PurgeDeleted(ctx context.Context) (int64, error)
	DeleteUserByPhone(ctx context.Context, rawPhone string) error
}

// Deps is what a command needs once the database is reachable.
type Deps struct {
	Migrator    Migrator
	Maintenance Maintenance
	Close       func() error
}

// Opener connects to storage. dsn overrides the configured DSN when set.
type Opener func(ctx context.Context, dsn string) (*Deps, error)

type postgresMigrator struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func (m postgresMigrator) Up(ctx context.Context) error   { return m.rm.RunMigrations(ctx, m.db) }
func (m postgresMigrator) Down(ctx context.Context) error { return m.rm.RollbackMigration(ctx, m.db) }

// PostgresOpener returns an Opener backed by the server's configuration
// and repositories.
func PostgresOpener(cfg *config.Config, logger logging.Logger) Opener {
	return func(ctx context.Context, dsn string) (*Deps, error) {
		if dsn == "" {
			dsn = cfg.DatabaseDSN
		}

		db, err := repomanager.OpenPostgres(ctx, dsn, cfg.DatabaseMaxOpenConns)
		if err != nil {
			return nil, err
		}

		rm := repomanager.NewPostgresRepositoryManager()
		return &Deps{
			Migrator:    postgresMigrator{db: db, rm: rm},
			Maintenance: services.NewMaintenanceService(db, rm, cfg.PhoneRegion, logger),
			Close:       db.Close,
		}, nil
	}
}
