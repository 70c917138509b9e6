package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

var (
	ErrOutsideWorkingHours = errors.New("requested time is outside clinic working hours")
	ErrDoctorUnavailable   = errors.New("doctor already has an appointment at the requested time")
	ErrStartInPast         = errors.New("appointment cannot start in the past")
	ErrDoctorInactive      = errors.New("doctor is not accepting appointments")
	ErrPatientInactive     = errors.New("patient is inactive")
	ErrNotCancelled        = errors.New("only cancelled appointments can be deleted")
)

func unavailable(err error) bool {
	return errors.Is(err, ErrOutsideWorkingHours) || errors.Is(err, ErrDoctorUnavailable)
}

// Schedule is the clinic's fixed calendar
type Schedule struct {
	Hours      model.WorkingHours
	SlotLength time.Duration
}

func (s Schedule) duration(minutes int) time.Duration {
	if minutes == 0 {
		return s.SlotLength
	}
	return time.Duration(minutes) * time.Minute
}

// booked returns the doctor's blocking appointments on the clinic day containing t
func (s Schedule) booked(ctx context.Context, repos repository.Repositories, doctorID uuid.UUID, t time.Time) ([]*model.Appointment, error) {
	day := model.StartOfDay(t.In(s.Hours.Location))
	return repos.Appointments.ListBlocking(ctx, doctorID, day, day.AddDate(0, 0, 1))
}

// check returns nil when [start, end) is bookable. skip excludes an appointment being moved.
func (s Schedule) check(ctx context.Context, repos repository.Repositories, doctorID uuid.UUID, start, end time.Time, skip uuid.UUID) error {
	if !s.Hours.Contains(start, end) {
		return ErrOutsideWorkingHours
	}
	booked, err := s.booked(ctx, repos, doctorID, start)
	if err != nil {
		return err
	}
	for _, other := range booked {
		if other.ID == skip || !other.BlocksSchedule() {
			continue
		}
		if other.Overlaps(start, end) {
			return ErrDoctorUnavailable
		}
	}
	return nil
}

// slots walks the working day in steps of length and keeps the windows no appointment overlaps
func (s Schedule) slots(date time.Time, length time.Duration, booked []*model.Appointment, notBefore time.Time) []model.TimeSlot {
	slots := []model.TimeSlot{}
	open, closing := s.Hours.Day(date)
	for start := open; !start.Add(length).After(closing); start = start.Add(s.SlotLength) {
		end := start.Add(length)
		if start.Before(notBefore) || !s.Hours.Contains(start, end) {
			continue
		}
		free := true
		for _, a := range booked {
			if a.BlocksSchedule() && a.Overlaps(start, end) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, model.TimeSlot{Start: start, End: end})
		}
	}
	return slots
}
