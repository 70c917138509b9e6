package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// Window is a candidate booking. A zero duration means one clinic slot.
type Window struct {
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,gte=15,lte=240"`
}

type CheckAvailabilityQuery struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
	Window
}

// AvailableSlotsQuery lists the free slots of a doctor on one clinic day
type AvailableSlotsQuery struct {
	DoctorID        uuid.UUID    `json:"doctor_id" validate:"required"`
	Date            service.Date `json:"date" validate:"required"`
	DurationMinutes int          `json:"duration_minutes" validate:"omitempty,gte=15,lte=240"`
}

type ScheduleAppointmentCommand struct {
	PatientID uuid.UUID `json:"patient_id" validate:"required"`
	DoctorID  uuid.UUID `json:"doctor_id" validate:"required"`
	Window
	Reason string `json:"reason" validate:"required,max=500"`
}

type RescheduleAppointmentCommand struct {
	ID uuid.UUID `json:"-" validate:"required"`
	Window
}

type StartAppointmentCommand struct {
	ID uuid.UUID `validate:"required"`
}

type CompleteAppointmentCommand struct {
	ID    uuid.UUID `json:"-" validate:"required"`
	Notes string    `json:"notes" validate:"max=5000"`
}

type CancelAppointmentCommand struct {
	ID     uuid.UUID `json:"-" validate:"required"`
	Reason string    `json:"reason" validate:"required,max=500"`
}

type MarkNoShowCommand struct {
	ID uuid.UUID `validate:"required"`
}

// DeleteAppointmentCommand removes a cancelled appointment
type DeleteAppointmentCommand struct {
	ID uuid.UUID `validate:"required"`
}

type GetAppointmentQuery struct {
	ID uuid.UUID `validate:"required"`
}

// ListAppointmentsQuery filters by start date; To is inclusive
type ListAppointmentsQuery struct {
	service.PageRequest
	DoctorID  uuid.UUID               `json:"doctor_id"`
	PatientID uuid.UUID               `json:"patient_id"`
	Status    model.AppointmentStatus `json:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled no_show"`
	From      service.Date            `json:"from"`
	To        service.Date            `json:"to"`
}

func (q ListAppointmentsQuery) Rules() []apperrors.FieldError {
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From.Time) {
		return []apperrors.FieldError{{Field: "to", Message: "must not be before from"}}
	}
	return nil
}
