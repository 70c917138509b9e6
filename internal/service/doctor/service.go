package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type Service struct {
	uow repository.UnitOfWork
	now service.Clock
}

func NewService(uow repository.UnitOfWork, now service.Clock) *Service {
	if now == nil {
		now = service.SystemClock
	}
	return &Service{uow: uow, now: now}
}

func (s *Service) Register(m *mediator.Mediator) {
	mediator.Register(m, s.Create)
	mediator.Register(m, s.Update)
	mediator.Register(m, s.Upsert)
	mediator.Register(m, s.Deactivate)
	mediator.Register(m, s.Activate)
	mediator.Register(m, s.Delete)
	mediator.Register(m, s.Get)
	mediator.Register(m, s.List)
}

func (s *Service) Create(ctx context.Context, cmd CreateDoctorCommand) (dto.DoctorDTO, error) {
	doctor, err := s.newDoctor(cmd.DoctorInput)
	if err != nil {
		return dto.DoctorDTO{}, err
	}

	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Doctors.Create(ctx, doctor)
	})
	if err != nil {
		return dto.DoctorDTO{}, fmt.Errorf("failed to create doctor: %w", err)
	}
	return dto.Doctor(doctor), nil
}

func (s *Service) Update(ctx context.Context, cmd UpdateDoctorCommand) (dto.DoctorDTO, error) {
	var out dto.DoctorDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		doctor, err := repos.Doctors.Get(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if err := s.apply(doctor, cmd.DoctorInput); err != nil {
			return err
		}
		if err := repos.Doctors.Update(ctx, doctor); err != nil {
			return err
		}
		out = dto.Doctor(doctor)
		return nil
	})
	if err != nil {
		return dto.DoctorDTO{}, fmt.Errorf("failed to update doctor: %w", err)
	}
	return out, nil
}

func (s *Service) Upsert(ctx context.Context, cmd UpsertDoctorCommand) (service.Upserted[dto.DoctorDTO], error) {
	var out service.Upserted[dto.DoctorDTO]
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		doctor, err := repos.Doctors.Get(ctx, cmd.ID)
		switch {
		case apperrors.Is(err, apperrors.ErrNotFound):
			doctor, err = s.newDoctor(cmd.DoctorInput)
			if err != nil {
				return err
			}
			doctor.ID = cmd.ID
			if err := repos.Doctors.Create(ctx, doctor); err != nil {
				return err
			}
			out.Created = true
		case err != nil:
			return err
		default:
			if err := s.apply(doctor, cmd.DoctorInput); err != nil {
				return err
			}
			if err := repos.Doctors.Update(ctx, doctor); err != nil {
				return err
			}
		}
		out.Value = dto.Doctor(doctor)
		return nil
	})
	if err != nil {
		return service.Upserted[dto.DoctorDTO]{}, fmt.Errorf("failed to upsert doctor: %w", err)
	}
	return out, nil
}

func (s *Service) Deactivate(ctx context.Context, cmd DeactivateDoctorCommand) (dto.DoctorDTO, error) {
	return s.changeStatus(ctx, cmd.ID, (*model.Doctor).Deactivate)
}

func (s *Service) Activate(ctx context.Context, cmd ActivateDoctorCommand) (dto.DoctorDTO, error) {
	return s.changeStatus(ctx, cmd.ID, (*model.Doctor).Activate)
}

// Delete refuses doctors with appointments or medical records; deactivation covers that case
func (s *Service) Delete(ctx context.Context, cmd DeleteDoctorCommand) (struct{}, error) {
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Doctors.Get(ctx, cmd.ID); err != nil {
			return err
		}

		appointments, err := repos.Appointments.CountByDoctor(ctx, cmd.ID)
		if err != nil {
			return err
		}
		records, err := repos.MedicalRecords.CountByDoctor(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if appointments > 0 || records > 0 {
			return apperrors.BusinessRule(fmt.Sprintf(
				"doctor has %d appointments and %d medical records; deactivate the doctor instead",
				appointments, records), nil)
		}

		return repos.Doctors.Delete(ctx, cmd.ID, s.now())
	})
	if err != nil {
		return struct{}{}, fmt.Errorf("failed to delete doctor: %w", err)
	}
	return struct{}{}, nil
}

func (s *Service) Get(ctx context.Context, q GetDoctorQuery) (dto.DoctorDTO, error) {
	var out dto.DoctorDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		doctor, err := repos.Doctors.Get(ctx, q.ID)
		if err != nil {
			return err
		}
		out = dto.Doctor(doctor)
		return nil
	})
	if err != nil {
		return dto.DoctorDTO{}, fmt.Errorf("failed to get doctor: %w", err)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, q ListDoctorsQuery) (dto.Page[dto.DoctorDTO], error) {
	page := q.Pagination()
	filters := model.DoctorFilters{Specialization: q.Specialization, Status: q.Status, Search: q.Search}

	var out dto.Page[dto.DoctorDTO]
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		doctors, total, err := repos.Doctors.List(ctx, filters, page)
		if err != nil {
			return err
		}
		out = dto.NewPage(doctors, page, total, dto.Doctor)
		return nil
	})
	if err != nil {
		return dto.Page[dto.DoctorDTO]{}, fmt.Errorf("failed to list doctors: %w", err)
	}
	return out, nil
}

func (s *Service) newDoctor(in DoctorInput) (*model.Doctor, error) {
	p, fields := in.parse()
	if err := fields.Err(); err != nil {
		return nil, err
	}
	doctor, err := model.NewDoctor(p.name, in.Specialization, in.LicenseNumber, p.contact.Email, p.contact.Phone, in.ConsultationFee, s.now())
	if err != nil {
		return nil, service.Rule(err)
	}
	return doctor, nil
}

func (s *Service) apply(doctor *model.Doctor, in DoctorInput) error {
	p, fields := in.parse()
	if err := fields.Err(); err != nil {
		return err
	}
	now := s.now()
	if err := doctor.UpdateProfile(p.name, in.Specialization, in.LicenseNumber, in.ConsultationFee, now); err != nil {
		return service.Rule(err)
	}
	doctor.UpdateContactInformation(p.contact.Email, p.contact.Phone, now)
	return nil
}

func (s *Service) changeStatus(ctx context.Context, id uuid.UUID, change func(*model.Doctor, time.Time) error) (dto.DoctorDTO, error) {
	var out dto.DoctorDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		doctor, err := repos.Doctors.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := change(doctor, s.now()); err != nil {
			return service.Rule(err)
		}
		if err := repos.Doctors.Update(ctx, doctor); err != nil {
			return err
		}
		out = dto.Doctor(doctor)
		return nil
	})
	if err != nil {
		return dto.DoctorDTO{}, fmt.Errorf("failed to change doctor status: %w", err)
	}
	return out, nil
}
