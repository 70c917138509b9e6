package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

const timeLayout = "Monday, January 2, 2006 at 3:04 PM"

type message struct {
	to      string
	subject string
	body    string
}

func (n *Notifier) appointmentMessage(ctx context.Context, eventType string, ev model.AppointmentEvent) (*message, error) {
	var (
		patient *model.Patient
		doctor  *model.Doctor
	)
	err := n.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		if patient, err = repos.Patients.Get(ctx, ev.PatientID); err != nil {
			return err
		}
		doctor, err = repos.Doctors.Get(ctx, ev.DoctorID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment parties: %w", err)
	}
	if patient.Email == nil {
		return nil, nil
	}

	when := ev.StartTime.In(n.location).Format(timeLayout)
	var subject, lead string
	switch eventType {
	case model.EventAppointmentScheduled:
		subject, lead = "Appointment confirmed", "Your appointment has been booked"
	case model.EventAppointmentRescheduled:
		subject, lead = "Appointment rescheduled", "Your appointment has been moved"
	default:
		subject, lead = "Appointment cancelled", "Your appointment has been cancelled"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", patient.FullName.Display())
	fmt.Fprintf(&b, "%s with Dr. %s on %s.\n", lead, doctor.FullName.Display(), when)
	if ev.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", ev.Reason)
	}
	fmt.Fprintf(&b, "\n%s\n", n.clinicName)

	return &message{
		to:      patient.Email.String(),
		subject: fmt.Sprintf("%s: %s", n.clinicName, subject),
		body:    b.String(),
	}, nil
}

func (n *Notifier) billMessage(ctx context.Context, eventType string, ev model.BillEvent) (*message, error) {
	var patient *model.Patient
	err := n.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		patient, err = repos.Patients.Get(ctx, ev.PatientID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load bill patient: %w", err)
	}
	if patient.Email == nil {
		return nil, nil
	}

	var subject string
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", patient.FullName.Display())
	if eventType == model.EventBillIssued {
		subject = "Bill " + ev.BillNumber
		fmt.Fprintf(&b, "Bill %s has been issued for %s.\n", ev.BillNumber, ev.Total)
	} else {
		subject = "Payment received for bill " + ev.BillNumber
		fmt.Fprintf(&b, "We received your payment of %s for bill %s.\n", ev.Amount, ev.BillNumber)
	}
	fmt.Fprintf(&b, "Remaining balance: %s\n\n%s\n", ev.Balance, n.clinicName)

	return &message{
		to:      patient.Email.String(),
		subject: fmt.Sprintf("%s: %s", n.clinicName, subject),
		body:    b.String(),
	}, nil
}
