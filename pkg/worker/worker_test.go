package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type stubBroker struct {
	PublishFunc func(ctx context.Context, channel string, payload []byte) error
	published   []string
}

func (b *stubBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.published = append(b.published, channel)
	if b.PublishFunc != nil {
		return b.PublishFunc(ctx, channel, payload)
	}
	return nil
}

func (b *stubBroker) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.Message, error) {
	return nil, errors.New("not supported")
}

func (b *stubBroker) Close() error { return nil }

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newProcessor(t *testing.T, uow *mocks.UnitOfWork, broker messaging.Broker) *OutboxProcessor {
	t.Helper()
	p, err := NewOutboxProcessor(uow, broker, OutboxProcessorConfig{
		BatchSize:    10,
		PollInterval: time.Second,
		MaxRetries:   3,
		RetryDelay:   time.Minute,
	}, zerolog.Nop(), metrics.New(prometheus.NewRegistry(), "test"))
	require.NoError(t, err)
	p.now = func() time.Time { return fixedNow }
	return p
}

func event(eventType string, retries int) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:         uuid.New(),
		EventType:  eventType,
		Payload:    []byte(`{}`),
		Status:     model.OutboxStatusPending,
		RetryCount: retries,
	}
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	_, err := NewOutboxProcessor(mocks.NewUnitOfWork(), &stubBroker{}, OutboxProcessorConfig{}, zerolog.Nop(), nil)
	assert.ErrorContains(t, err, "batch size")
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	ok := event(model.EventBillIssued, 0)
	bad := event(model.EventAppointmentScheduled, 0)
	uow.Outbox.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{ok, bad}, nil)
	uow.Outbox.On("MarkProcessed", mock.Anything, ok.ID, fixedNow).Return(nil)
	retryAt := fixedNow.Add(time.Minute)
	uow.Outbox.On("MarkFailed", mock.Anything, bad.ID, "redis down", &retryAt).Return(nil)

	broker := &stubBroker{PublishFunc: func(_ context.Context, channel string, _ []byte) error {
		if channel == model.EventAppointmentScheduled {
			return errors.New("redis down")
		}
		return nil
	}}

	n, err := newProcessor(t, uow, broker).ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{model.EventBillIssued, model.EventAppointmentScheduled}, broker.published)
	assert.Equal(t, 1, uow.Commits)
	uow.AssertExpectations(t)
}

func TestProcessBatchParksAfterMaxRetries(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	e := event(model.EventBillIssued, 2)
	uow.Outbox.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{e}, nil)
	uow.Outbox.On("MarkFailed", mock.Anything, e.ID, "nope", (*time.Time)(nil)).Return(nil)

	broker := &stubBroker{PublishFunc: func(context.Context, string, []byte) error { return errors.New("nope") }}

	n, err := newProcessor(t, uow, broker).ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	uow.AssertExpectations(t)
}

func TestProcessBatchRollsBackWhenMarkFails(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	e := event(model.EventBillIssued, 0)
	uow.Outbox.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{e}, nil)
	uow.Outbox.On("MarkProcessed", mock.Anything, e.ID, fixedNow).Return(errors.New("conn reset"))

	_, err := newProcessor(t, uow, &stubBroker{}).ProcessBatch(context.Background())

	assert.ErrorContains(t, err, "conn reset")
	assert.Equal(t, 1, uow.Rollbacks)
}

func TestNextRetryBacksOff(t *testing.T) {
	p := newProcessor(t, mocks.NewUnitOfWork(), &stubBroker{})
	p.config.MaxRetries = 20

	assert.Equal(t, fixedNow.Add(time.Minute), *p.nextRetry(0))
	assert.Equal(t, fixedNow.Add(4*time.Minute), *p.nextRetry(2))
	assert.Equal(t, fixedNow.Add(maxRetryDelay), *p.nextRetry(10))
	assert.Nil(t, p.nextRetry(19))
}

func TestOutboxCleanup(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	uow.Outbox.On("DeleteProcessedBefore", mock.Anything, fixedNow.Add(-48*time.Hour)).Return(int64(7), nil)

	c := NewOutboxCleanup(uow, 48*time.Hour, zerolog.Nop(), metrics.New(prometheus.NewRegistry(), "test"))
	c.now = func() time.Time { return fixedNow }

	n, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	uow.AssertExpectations(t)
}

func TestOutboxCleanupSchedule(t *testing.T) {
	c := NewOutboxCleanup(mocks.NewUnitOfWork(), time.Hour, zerolog.Nop(), metrics.New(prometheus.NewRegistry(), "test"))
	scheduler := cron.New()

	_, err := c.Schedule(context.Background(), scheduler, "@every 1h")
	require.NoError(t, err)
	assert.Len(t, scheduler.Entries(), 1)

	_, err = c.Schedule(context.Background(), scheduler, "every so often")
	assert.ErrorContains(t, err, "invalid cleanup schedule")
}
