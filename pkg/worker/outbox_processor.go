package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

const maxRetryDelay = time.Hour

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// MaxRetries failed publishes park the event
	MaxRetries int
	RetryDelay time.Duration
}

func (c OutboxProcessorConfig) validate() error {
	switch {
	case c.BatchSize <= 0:
		return errors.New("batch size must be greater than 0")
	case c.PollInterval <= 0:
		return errors.New("poll interval must be greater than 0")
	case c.MaxRetries <= 0:
		return errors.New("max retries must be greater than 0")
	case c.RetryDelay <= 0:
		return errors.New("retry delay must be greater than 0")
	}
	return nil
}

// OutboxProcessor publishes committed outbox events to the broker
type OutboxProcessor struct {
	uow     repository.UnitOfWork
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOutboxProcessor(
	uow repository.UnitOfWork,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid outbox processor config: %w", err)
	}
	return &OutboxProcessor{
		uow:     uow,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// Start polls until ctx is cancelled
func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info().Dur("poll_interval", p.config.PollInterval).Msg("starting outbox processor")

	for {
		if _, err := p.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error().Err(err).Msg("failed to process outbox batch")
		}

		select {
		case <-ctx.Done():
			p.logger.Info().Msg("shutting down outbox processor")
			return
		case <-ticker.C:
		}
	}
}

// ProcessBatch publishes one batch of due events inside a single transaction and returns
// how many were published
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	published := 0
	err := p.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		events, err := repos.Outbox.GetPendingEventsWithLock(ctx, p.config.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to get pending events: %w", err)
		}
		p.metrics.OutboxBatchSize.Set(float64(len(events)))

		for _, event := range events {
			ok, err := p.processEvent(ctx, repos.Outbox, event)
			if err != nil {
				return err
			}
			if ok {
				published++
			}
		}
		return nil
	})
	return published, err
}

func (p *OutboxProcessor) processEvent(ctx context.Context, repo repository.OutboxRepository, event *model.OutboxEvent) (bool, error) {
	log := p.logger.With().
		Str("event_id", event.ID.String()).
		Str("event_type", event.EventType).
		Logger()

	if pubErr := p.broker.Publish(ctx, event.EventType, event.Payload); pubErr != nil {
		p.metrics.OutboxEventsFailed.WithLabelValues(event.EventType).Inc()

		retryAt := p.nextRetry(event.RetryCount)
		if retryAt == nil {
			log.Error().Err(pubErr).Int("retry_count", event.RetryCount+1).Msg("outbox event parked after max retries")
		} else {
			log.Warn().Err(pubErr).Time("retry_at", *retryAt).Msg("failed to publish outbox event")
		}

		if err := repo.MarkFailed(ctx, event.ID, pubErr.Error(), retryAt); err != nil {
			return false, fmt.Errorf("failed to mark event %s failed: %w", event.ID, err)
		}
		return false, nil
	}

	if err := repo.MarkProcessed(ctx, event.ID, p.now()); err != nil {
		return false, fmt.Errorf("failed to mark event %s processed: %w", event.ID, err)
	}
	p.metrics.OutboxEventsProcessed.WithLabelValues(event.EventType).Inc()
	log.Debug().Msg("outbox event published")
	return true, nil
}

// nextRetry backs off exponentially from RetryDelay. nil means give up.
func (p *OutboxProcessor) nextRetry(retryCount int) *time.Time {
	if retryCount+1 >= p.config.MaxRetries {
		return nil
	}
	delay := p.config.RetryDelay << retryCount
	if delay <= 0 || delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	at := p.now().Add(delay)
	return &at
}
