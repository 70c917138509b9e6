package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// OutboxCleanup removes processed events older than the retention window
type OutboxCleanup struct {
	uow       repository.UnitOfWork
	retention time.Duration
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewOutboxCleanup(uow repository.UnitOfWork, retention time.Duration, logger zerolog.Logger, metrics *metrics.Metrics) *OutboxCleanup {
	return &OutboxCleanup{
		uow:       uow,
		retention: retention,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (c *OutboxCleanup) Run(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.retention)

	var deleted int64
	err := c.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		n, err := repos.Outbox.DeleteProcessedBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge outbox events: %w", err)
	}

	c.metrics.OutboxEventsPurged.Add(float64(deleted))
	c.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("purged processed outbox events")
	return deleted, nil
}

// Schedule registers the cleanup with the cron scheduler. expr accepts standard cron
// expressions and descriptors such as "@every 1h".
func (c *OutboxCleanup) Schedule(ctx context.Context, scheduler *cron.Cron, expr string) (cron.EntryID, error) {
	id, err := scheduler.AddFunc(expr, func() {
		if _, err := c.Run(ctx); err != nil {
			c.logger.Error().Err(err).Msg("outbox cleanup failed")
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid cleanup schedule %q: %w", expr, err)
	}
	return id, nil
}
