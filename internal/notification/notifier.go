// Package notification emails patients when appointment and billing events are published.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// Channels the notifier listens on
var Channels = []string{
	model.EventAppointmentScheduled,
	model.EventAppointmentRescheduled,
	model.EventAppointmentCancelled,
	model.EventBillIssued,
	model.EventBillPaymentRecorded,
}

type Notifier struct {
	broker     messaging.Broker
	uow        repository.UnitOfWork
	mailer     email.Service
	clinicName string
	location   *time.Location
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

func NewNotifier(
	broker messaging.Broker,
	uow repository.UnitOfWork,
	mailer email.Service,
	clinicName string,
	location *time.Location,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *Notifier {
	return &Notifier{
		broker:     broker,
		uow:        uow,
		mailer:     mailer,
		clinicName: clinicName,
		location:   location,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run blocks until ctx is cancelled or the subscription ends
func (n *Notifier) Run(ctx context.Context) error {
	msgs, err := n.broker.Subscribe(ctx, Channels...)
	if err != nil {
		return fmt.Errorf("failed to subscribe to notification channels: %w", err)
	}

	for msg := range msgs {
		if err := n.Handle(ctx, msg); err != nil {
			n.metrics.NotificationsFailed.WithLabelValues(msg.Channel).Inc()
			n.logger.Error().Err(err).Str("event_type", msg.Channel).Msg("failed to send notification")
			continue
		}
	}
	return ctx.Err()
}

// Handle sends the email for one message. Patients without an email are skipped.
func (n *Notifier) Handle(ctx context.Context, msg messaging.Message) error {
	var (
		patientID uuid.UUID
		mail      *message
		err       error
	)

	switch msg.Channel {
	case model.EventAppointmentScheduled, model.EventAppointmentRescheduled, model.EventAppointmentCancelled:
		var ev model.AppointmentEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", msg.Channel, err)
		}
		patientID = ev.PatientID
		mail, err = n.appointmentMessage(ctx, msg.Channel, ev)
	case model.EventBillIssued, model.EventBillPaymentRecorded:
		var ev model.BillEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", msg.Channel, err)
		}
		patientID = ev.PatientID
		mail, err = n.billMessage(ctx, msg.Channel, ev)
	default:
		return fmt.Errorf("unsupported event type %q", msg.Channel)
	}
	if err != nil {
		return err
	}
	if mail == nil {
		n.logger.Debug().Str("patient_id", patientID.String()).Str("event_type", msg.Channel).Msg("patient has no email, skipping")
		return nil
	}

	if err := n.mailer.Send(ctx, mail.to, mail.subject, mail.body); err != nil {
		return err
	}
	n.metrics.NotificationsSent.WithLabelValues(msg.Channel).Inc()
	return nil
}
