// Package jobs runs the server's periodic background work.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthtracker/internal/logging"
	"github.com/robfig/cron/v3"
)

const purgeTimeout = 5 * time.Minute

// Purger hard-deletes soft-deleted accounts. *services.MaintenanceService
// implements it.
type Purger interface {
	PurgeDeleted(ctx context.Context) (int64, error)
}

// PurgeJob runs Purger on a cron schedule. Overlapping runs are skipped.
type PurgeJob struct {
	cron   *cron.Cron
	purger Purger
	logger logging.Logger
}

// NewPurgeJob registers the purge under schedule, a standard five-field
// cron spec or a descriptor such as "@daily".
func NewPurgeJob(schedule string, p Purger, l logging.Logger) (*PurgeJob, error) {
	j := &PurgeJob{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DiscardLogger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		purger: p,
		logger: l.With("module", "purge_job"),
	}

	if _, err := j.cron.AddFunc(schedule, func() { j.runOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Run starts the scheduler and blocks until ctx is cancelled and any
// running purge has finished.
func (j *PurgeJob) Run(ctx context.Context) {
	j.logger.Info(ctx, "Starting purge job")
	j.cron.Start()

	<-ctx.Done()

	j.logger.Info(ctx, "Stopping purge job...")
	<-j.cron.Stop().Done()
}

func (j *PurgeJob) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := j.purger.PurgeDeleted(ctx)
	if err != nil {
		j.logger.Error(ctx, "purge failed", "error", err)
		return
	}
	j.logger.Info(ctx, "purge finished", "purged", n)
}
