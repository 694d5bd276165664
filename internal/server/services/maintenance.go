package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/logging"
	"github.com/dmitrijs2005/healthtracker/internal/phone"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/repomanager"
)

// MaintenanceService performs operator tasks: hard deletes and the purge of
// soft-deleted accounts. Deleting a user cascades to its measurements and
// follow edges.
type MaintenanceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	region      string
	logger      logging.Logger
}

func NewMaintenanceService(db *sql.DB, m repomanager.RepositoryManager, region string, logger logging.Logger) *MaintenanceService {
	return &MaintenanceService{
		db:          db,
		repomanager: m,
		region:      region,
		logger:      logger.With("module", "maintenance"),
	}
}

// PurgeDeleted hard-deletes every soft-deleted user.
func (s *MaintenanceService) PurgeDeleted(ctx context.Context) (n int64, err error) {
	ctx, span := startSpan(ctx, "MaintenanceService.PurgeDeleted")
	defer endSpan(span, &err)

	n, err = s.repomanager.Users(s.db).PurgeDeleted(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "purged deleted users", "count", n)
	return n, nil
}

// DeleteUserByPhone hard-deletes the user owning rawPhone, soft-deleted or not.
func (s *MaintenanceService) DeleteUserByPhone(ctx context.Context, rawPhone string) (err error) {
	ctx, span := startSpan(ctx, "MaintenanceService.DeleteUserByPhone")
	defer endSpan(span, &err)

	number, err := phone.Normalize(rawPhone, s.region)
	if err != nil {
		return err
	}

	if err := s.repomanager.Users(s.db).DeleteByPhone(ctx, number); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.logger.Info(ctx, "user deleted")
	return nil
}
