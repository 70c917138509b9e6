package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type Service struct {
	uow      repository.UnitOfWork
	schedule Schedule
	now      service.Clock
}

func NewService(uow repository.UnitOfWork, schedule Schedule, now service.Clock) *Service {
	if now == nil {
		now = service.SystemClock
	}
	if schedule.Hours.Location == nil {
		schedule.Hours = model.DefaultWorkingHours(nil)
	}
	if schedule.SlotLength <= 0 {
		schedule.SlotLength = 30 * time.Minute
	}
	return &Service{uow: uow, schedule: schedule, now: now}
}

func (s *Service) Register(m *mediator.Mediator) {
	mediator.Register(m, s.CheckAvailability)
	mediator.Register(m, s.AvailableSlots)
	mediator.Register(m, s.Schedule)
	mediator.Register(m, s.Reschedule)
	mediator.Register(m, s.Start)
	mediator.Register(m, s.Complete)
	mediator.Register(m, s.Cancel)
	mediator.Register(m, s.MarkNoShow)
	mediator.Register(m, s.Delete)
	mediator.Register(m, s.Get)
	mediator.Register(m, s.List)
}

func (s *Service) CheckAvailability(ctx context.Context, q CheckAvailabilityQuery) (dto.AvailabilityDTO, error) {
	start := q.StartTime
	end := start.Add(s.schedule.duration(q.DurationMinutes))
	out := dto.AvailabilityDTO{DoctorID: q.DoctorID, Start: start, End: end}

	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Doctors.Get(ctx, q.DoctorID); err != nil {
			return err
		}
		err := s.schedule.check(ctx, repos, q.DoctorID, start, end, uuid.Nil)
		if unavailable(err) {
			return nil
		}
		if err != nil {
			return err
		}
		out.Available = true
		return nil
	})
	if err != nil {
		return dto.AvailabilityDTO{}, fmt.Errorf("failed to check availability: %w", err)
	}
	return out, nil
}

func (s *Service) AvailableSlots(ctx context.Context, q AvailableSlotsQuery) ([]model.TimeSlot, error) {
	y, m, d := q.Date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, s.schedule.Hours.Location)
	length := s.schedule.duration(q.DurationMinutes)

	var out []model.TimeSlot
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Doctors.Get(ctx, q.DoctorID); err != nil {
			return err
		}
		booked, err := s.schedule.booked(ctx, repos, q.DoctorID, day)
		if err != nil {
			return err
		}
		out = s.schedule.slots(day, length, booked, s.now())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}
	return out, nil
}

func (s *Service) Schedule(ctx context.Context, cmd ScheduleAppointmentCommand) (dto.AppointmentDTO, error) {
	if cmd.StartTime.Before(s.now()) {
		return dto.AppointmentDTO{}, service.Rule(ErrStartInPast)
	}
	a, err := model.NewAppointment(cmd.PatientID, cmd.DoctorID, cmd.StartTime, s.schedule.duration(cmd.DurationMinutes), cmd.Reason, s.now())
	if err != nil {
		return dto.AppointmentDTO{}, service.Invalid("duration_minutes", err)
	}

	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		doctor, err := repos.Doctors.Get(ctx, cmd.DoctorID)
		if err != nil {
			return err
		}
		if !doctor.IsActive() {
			return service.Rule(ErrDoctorInactive)
		}
		patient, err := repos.Patients.Get(ctx, cmd.PatientID)
		if err != nil {
			return err
		}
		if !patient.IsActive() {
			return service.Rule(ErrPatientInactive)
		}

		if err := s.available(ctx, repos, a, uuid.Nil); err != nil {
			return err
		}
		if err := repos.Appointments.Create(ctx, a); err != nil {
			return err
		}
		return s.record(ctx, repos, model.EventAppointmentScheduled, a)
	})
	if err != nil {
		return dto.AppointmentDTO{}, fmt.Errorf("failed to schedule appointment: %w", err)
	}
	return dto.Appointment(a), nil
}

func (s *Service) Reschedule(ctx context.Context, cmd RescheduleAppointmentCommand) (dto.AppointmentDTO, error) {
	if cmd.StartTime.Before(s.now()) {
		return dto.AppointmentDTO{}, service.Rule(ErrStartInPast)
	}

	var out dto.AppointmentDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		a, err := repos.Appointments.Get(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if a.Status != model.AppointmentStatusScheduled {
			return service.Rule(model.ErrAppointmentNotScheduled)
		}

		moved := *a
		if err := moved.Reschedule(cmd.StartTime, s.schedule.duration(cmd.DurationMinutes), s.now()); err != nil {
			return service.Invalid("duration_minutes", err)
		}
		if err := s.available(ctx, repos, &moved, a.ID); err != nil {
			return err
		}
		if err := repos.Appointments.Update(ctx, &moved); err != nil {
			return err
		}
		if err := s.record(ctx, repos, model.EventAppointmentRescheduled, &moved); err != nil {
			return err
		}
		out = dto.Appointment(&moved)
		return nil
	})
	if err != nil {
		return dto.AppointmentDTO{}, fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	return out, nil
}

func (s *Service) Start(ctx context.Context, cmd StartAppointmentCommand) (dto.AppointmentDTO, error) {
	return s.transition(ctx, cmd.ID, "start", "", func(a *model.Appointment, now time.Time) error {
		return a.Start(now)
	})
}

func (s *Service) Complete(ctx context.Context, cmd CompleteAppointmentCommand) (dto.AppointmentDTO, error) {
	return s.transition(ctx, cmd.ID, "complete", "", func(a *model.Appointment, now time.Time) error {
		return a.Complete(cmd.Notes, now)
	})
}

func (s *Service) Cancel(ctx context.Context, cmd CancelAppointmentCommand) (dto.AppointmentDTO, error) {
	return s.transition(ctx, cmd.ID, "cancel", model.EventAppointmentCancelled, func(a *model.Appointment, now time.Time) error {
		return a.Cancel(cmd.Reason, now)
	})
}

func (s *Service) MarkNoShow(ctx context.Context, cmd MarkNoShowCommand) (dto.AppointmentDTO, error) {
	return s.transition(ctx, cmd.ID, "mark no-show for", "", func(a *model.Appointment, now time.Time) error {
		return a.MarkNoShow(now)
	})
}

func (s *Service) Delete(ctx context.Context, cmd DeleteAppointmentCommand) (struct{}, error) {
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		a, err := repos.Appointments.Get(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if a.Status != model.AppointmentStatusCancelled {
			return service.Rule(ErrNotCancelled)
		}
		return repos.Appointments.Delete(ctx, a.ID, s.now())
	})
	if err != nil {
		return struct{}{}, fmt.Errorf("failed to delete appointment: %w", err)
	}
	return struct{}{}, nil
}

func (s *Service) Get(ctx context.Context, q GetAppointmentQuery) (dto.AppointmentDTO, error) {
	var out dto.AppointmentDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		a, err := repos.Appointments.Get(ctx, q.ID)
		if err != nil {
			return err
		}
		out = dto.Appointment(a)
		return nil
	})
	if err != nil {
		return dto.AppointmentDTO{}, fmt.Errorf("failed to get appointment: %w", err)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, q ListAppointmentsQuery) (dto.Page[dto.AppointmentDTO], error) {
	filters := model.AppointmentFilters{DoctorID: q.DoctorID, PatientID: q.PatientID, Status: q.Status}
	if !q.From.IsZero() {
		filters.StartDate = s.localDay(q.From)
	}
	if !q.To.IsZero() {
		filters.EndDate = s.localDay(q.To).AddDate(0, 0, 1)
	}
	page := q.Pagination()

	var out dto.Page[dto.AppointmentDTO]
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		appointments, total, err := repos.Appointments.List(ctx, filters, page)
		if err != nil {
			return err
		}
		out = dto.NewPage(appointments, page, total, dto.Appointment)
		return nil
	})
	if err != nil {
		return dto.Page[dto.AppointmentDTO]{}, fmt.Errorf("failed to list appointments: %w", err)
	}
	return out, nil
}

func (s *Service) localDay(d service.Date) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, s.schedule.Hours.Location)
}

func (s *Service) available(ctx context.Context, repos repository.Repositories, a *model.Appointment, skip uuid.UUID) error {
	err := s.schedule.check(ctx, repos, a.DoctorID, a.StartTime, a.EndTime, skip)
	if unavailable(err) {
		return service.Rule(err)
	}
	return err
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, op, event string, change func(*model.Appointment, time.Time) error) (dto.AppointmentDTO, error) {
	var out dto.AppointmentDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		a, err := repos.Appointments.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := change(a, s.now()); err != nil {
			return service.Rule(err)
		}
		if err := repos.Appointments.Update(ctx, a); err != nil {
			return err
		}
		if event != "" {
			if err := s.record(ctx, repos, event, a); err != nil {
				return err
			}
		}
		out = dto.Appointment(a)
		return nil
	})
	if err != nil {
		return dto.AppointmentDTO{}, fmt.Errorf("failed to %s appointment: %w", op, err)
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, repos repository.Repositories, eventType string, a *model.Appointment) error {
	event, err := model.NewOutboxEvent(eventType, a.ID, model.AppointmentEvent{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Reason:        a.Reason,
	}, s.now())
	if err != nil {
		return err
	}
	return repos.Outbox.Create(ctx, event)
}
