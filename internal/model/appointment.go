package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"   // booked, may start, be cancelled or missed
	AppointmentStatusInProgress AppointmentStatus = "in_progress" // patient is with the doctor
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// Business rules for appointment length
const (
	MinAppointmentDuration = 15 * time.Minute
	MaxAppointmentDuration = 4 * time.Hour
)

var (
	ErrAppointmentTooShort     = fmt.Errorf("appointment duration must be at least %v", MinAppointmentDuration)
	ErrAppointmentTooLong      = fmt.Errorf("appointment duration cannot exceed %v", MaxAppointmentDuration)
	ErrAppointmentNotScheduled = errors.New("appointment is not scheduled")
	ErrAppointmentNotStarted   = errors.New("appointment is not in progress")
	ErrAppointmentCancelled    = errors.New("appointment is already cancelled")
	ErrAppointmentCompleted    = errors.New("cannot change a completed appointment")
	ErrCancelReasonRequired    = errors.New("cancel reason is required")
)

type Appointment struct {
	Base
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	EndTime      time.Time         `db:"end_time" json:"end_time"`
	Reason       string            `db:"reason" json:"reason"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	Status       AppointmentStatus `db:"status" json:"status"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

func NewAppointment(patientID, doctorID uuid.UUID, start time.Time, duration time.Duration, reason string, now time.Time) (*Appointment, error) {
	if err := validateDuration(duration); err != nil {
		return nil, err
	}
	return &Appointment{
		Base:      newBase(now),
		PatientID: patientID,
		DoctorID:  doctorID,
		StartTime: start,
		EndTime:   start.Add(duration),
		Reason:    strings.TrimSpace(reason),
		Status:    AppointmentStatusScheduled,
	}, nil
}

func validateDuration(d time.Duration) error {
	if d < MinAppointmentDuration {
		return ErrAppointmentTooShort
	}
	if d > MaxAppointmentDuration {
		return ErrAppointmentTooLong
	}
	return nil
}

func (a *Appointment) EndsAt() time.Time {
	return a.EndTime
}

func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// Overlaps reports whether [start, end) intersects this appointment
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return start.Before(a.EndTime) && end.After(a.StartTime)
}

// BlocksSchedule reports whether the appointment occupies the doctor's time
func (a *Appointment) BlocksSchedule() bool {
	return a.Status == AppointmentStatusScheduled || a.Status == AppointmentStatusInProgress
}

func (a *Appointment) Reschedule(start time.Time, duration time.Duration, now time.Time) error {
	if a.Status != AppointmentStatusScheduled {
		return ErrAppointmentNotScheduled
	}
	if err := validateDuration(duration); err != nil {
		return err
	}
	a.StartTime = start
	a.EndTime = start.Add(duration)
	a.touch(now)
	return nil
}

func (a *Appointment) Start(now time.Time) error {
	if a.Status != AppointmentStatusScheduled {
		return ErrAppointmentNotScheduled
	}
	a.Status = AppointmentStatusInProgress
	a.touch(now)
	return nil
}

func (a *Appointment) Complete(notes string, now time.Time) error {
	if a.Status != AppointmentStatusInProgress {
		return ErrAppointmentNotStarted
	}
	a.Status = AppointmentStatusCompleted
	if notes = strings.TrimSpace(notes); notes != "" {
		a.Notes = notes
	}
	a.touch(now)
	return nil
}

func (a *Appointment) Cancel(reason string, now time.Time) error {
	switch a.Status {
	case AppointmentStatusCancelled:
		return ErrAppointmentCancelled
	case AppointmentStatusCompleted:
		return ErrAppointmentCompleted
	case AppointmentStatusScheduled:
	default:
		return ErrAppointmentNotScheduled
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrCancelReasonRequired
	}
	a.Status = AppointmentStatusCancelled
	a.CancelReason = &reason
	a.touch(now)
	return nil
}

func (a *Appointment) MarkNoShow(now time.Time) error {
	if a.Status != AppointmentStatusScheduled {
		return ErrAppointmentNotScheduled
	}
	a.Status = AppointmentStatusNoShow
	a.touch(now)
	return nil
}

// WorkingHours is the clinic's daily window, as offsets from local midnight.
// Saturdays and Sundays are closed.
type WorkingHours struct {
	Open     time.Duration
	Close    time.Duration
	Location *time.Location
}

func DefaultWorkingHours(loc *time.Location) WorkingHours {
	if loc == nil {
		loc = time.UTC
	}
	return WorkingHours{Open: 8 * time.Hour, Close: 17 * time.Hour, Location: loc}
}

// Contains reports whether [start, end) lies inside one working day
func (w WorkingHours) Contains(start, end time.Time) bool {
	if !end.After(start) {
		return false
	}
	s, e := start.In(w.Location), end.In(w.Location)
	if s.Weekday() == time.Saturday || s.Weekday() == time.Sunday {
		return false
	}
	midnight := StartOfDay(s)
	return s.Sub(midnight) >= w.Open && e.Sub(midnight) <= w.Close
}

// Day returns the opening and closing instants on the given date
func (w WorkingHours) Day(date time.Time) (time.Time, time.Time) {
	midnight := StartOfDay(date.In(w.Location))
	return midnight.Add(w.Open), midnight.Add(w.Close)
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}
