package patient

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
	mediator.Register(m, s.RegisterPatient)
	mediator.Register(m, s.Update)
	mediator.Register(m, s.Upsert)
	mediator.Register(m, s.UpdateContact)
	mediator.Register(m, s.Deactivate)
	mediator.Register(m, s.Activate)
	mediator.Register(m, s.Delete)
	mediator.Register(m, s.Get)
	mediator.Register(m, s.List)
}

func (s *Service) RegisterPatient(ctx context.Context, cmd RegisterPatientCommand) (dto.PatientDTO, error) {
	patient, err := s.newPatient(cmd.PatientInput)
	if err != nil {
		return dto.PatientDTO{}, err
	}

	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return s.create(ctx, repos, patient)
	})
	if err != nil {
		return dto.PatientDTO{}, fmt.Errorf("failed to register patient: %w", err)
	}
	return dto.Patient(patient, s.now()), nil
}

func (s *Service) Update(ctx context.Context, cmd UpdatePatientCommand) (dto.PatientDTO, error) {
	var out dto.PatientDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		patient, err := repos.Patients.Get(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if err := s.apply(patient, cmd.PatientInput); err != nil {
			return err
		}
		if err := repos.Patients.Update(ctx, patient); err != nil {
			return err
		}
		out = dto.Patient(patient, s.now())
		return nil
	})
	if err != nil {
		return dto.PatientDTO{}, fmt.Errorf("failed to update patient: %w", err)
	}
	return out, nil
}

func (s *Service) Upsert(ctx context.Context, cmd UpsertPatientCommand) (service.Upserted[dto.PatientDTO], error) {
	var out service.Upserted[dto.PatientDTO]
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		patient, err := repos.Patients.Get(ctx, cmd.ID)
		switch {
		case apperrors.Is(err, apperrors.ErrNotFound):
			patient, err = s.newPatient(cmd.PatientInput)
			if err != nil {
				return err
			}
			patient.ID = cmd.ID
			if err := s.create(ctx, repos, patient); err != nil {
				return err
			}
			out.Created = true
		case err != nil:
			return err
		default:
			if err := s.apply(patient, cmd.PatientInput); err != nil {
				return err
			}
			if err := repos.Patients.Update(ctx, patient); err != nil {
				return err
			}
		}
		out.Value = dto.Patient(patient, s.now())
		return nil
	})
	if err != nil {
		return service.Upserted[dto.PatientDTO]{}, fmt.Errorf("failed to upsert patient: %w", err)
	}
	return out, nil
}

func (s *Service) UpdateContact(ctx context.Context, cmd UpdatePatientContactCommand) (dto.PatientDTO, error) {
	var f service.Fields
	contact := cmd.ContactInput.parse(&f)
	if err := f.Err(); err != nil {
		return dto.PatientDTO{}, err
	}

	var out dto.PatientDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		patient, err := repos.Patients.Get(ctx, cmd.ID)
		if err != nil {
			return err
		}
		s.applyContact(patient, cmd.ContactInput, contact)
		if err := repos.Patients.Update(ctx, patient); err != nil {
			return err
		}
		out = dto.Patient(patient, s.now())
		return nil
	})
	if err != nil {
		return dto.PatientDTO{}, fmt.Errorf("failed to update patient contact: %w", err)
	}
	return out, nil
}

func (s *Service) Deactivate(ctx context.Context, cmd DeactivatePatientCommand) (dto.PatientDTO, error) {
	return s.changeStatus(ctx, cmd.ID, (*model.Patient).Deactivate)
}

func (s *Service) Activate(ctx context.Context, cmd ActivatePatientCommand) (dto.PatientDTO, error) {
	return s.changeStatus(ctx, cmd.ID, (*model.Patient).Activate)
}

// Delete refuses patients with appointments, medical records or bills
func (s *Service) Delete(ctx context.Context, cmd DeletePatientCommand) (struct{}, error) {
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Patients.Get(ctx, cmd.ID); err != nil {
			return err
		}

		related := []struct {
			name  string
			count func(context.Context, uuid.UUID) (int64, error)
		}{
			{"appointments", repos.Appointments.CountByPatient},
			{"medical records", repos.MedicalRecords.CountByPatient},
			{"bills", repos.Bills.CountByPatient},
		}
		for _, r := range related {
			n, err := r.count(ctx, cmd.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperrors.BusinessRule(fmt.Sprintf(
					"patient has %d %s; deactivate the patient instead", n, r.name), nil)
			}
		}

		return repos.Patients.Delete(ctx, cmd.ID, s.now())
	})
	if err != nil {
		return struct{}{}, fmt.Errorf("failed to delete patient: %w", err)
	}
	return struct{}{}, nil
}

func (s *Service) Get(ctx context.Context, q GetPatientQuery) (dto.PatientDTO, error) {
	var out dto.PatientDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		patient, err := repos.Patients.Get(ctx, q.ID)
		if err != nil {
			return err
		}
		out = dto.Patient(patient, s.now())
		return nil
	})
	if err != nil {
		return dto.PatientDTO{}, fmt.Errorf("failed to get patient: %w", err)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, q ListPatientsQuery) (dto.Page[dto.PatientDTO], error) {
	page := q.Pagination()
	now := s.now()

	var out dto.Page[dto.PatientDTO]
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		patients, total, err := repos.Patients.List(ctx, model.PatientFilters{Status: q.Status, Search: q.Search}, page)
		if err != nil {
			return err
		}
		out = dto.NewPage(patients, page, total, func(p *model.Patient) dto.PatientDTO {
			return dto.Patient(p, now)
		})
		return nil
	})
	if err != nil {
		return dto.Page[dto.PatientDTO]{}, fmt.Errorf("failed to list patients: %w", err)
	}
	return out, nil
}

func (s *Service) create(ctx context.Context, repos repository.Repositories, patient *model.Patient) error {
	if err := repos.Patients.Create(ctx, patient); err != nil {
		return err
	}

	payload := model.PatientEvent{PatientID: patient.ID, Name: patient.Display()}
	if patient.Email != nil {
		payload.Email = patient.Email.String()
	}
	event, err := model.NewOutboxEvent(model.EventPatientRegistered, patient.ID, payload, s.now())
	if err != nil {
		return err
	}
	return repos.Outbox.Create(ctx, event)
}

func (s *Service) newPatient(in PatientInput) (*model.Patient, error) {
	p, fields := in.parse()
	if err := fields.Err(); err != nil {
		return nil, err
	}
	now := s.now()
	patient, err := model.NewPatient(p.details, p.contact.phone, p.contact.email, p.contact.address, now)
	if err != nil {
		return nil, service.Rule(err)
	}
	if in.EmergencyContactName != "" || p.contact.emergencyContact != nil {
		patient.UpdateEmergencyContact(in.EmergencyContactName, p.contact.emergencyContact, now)
	}
	return patient, nil
}

func (s *Service) apply(patient *model.Patient, in PatientInput) error {
	p, fields := in.parse()
	if err := fields.Err(); err != nil {
		return err
	}
	if err := patient.UpdateDetails(p.details, s.now()); err != nil {
		return service.Rule(err)
	}
	s.applyContact(patient, in.ContactInput, p.contact)
	return nil
}

func (s *Service) applyContact(patient *model.Patient, in ContactInput, c parsedContact) {
	now := s.now()
	patient.UpdateContactInformation(c.phone, c.email, c.address, now)
	patient.UpdateEmergencyContact(in.EmergencyContactName, c.emergencyContact, now)
}

func (s *Service) changeStatus(ctx context.Context, id uuid.UUID, change func(*model.Patient, time.Time) error) (dto.PatientDTO, error) {
	var out dto.PatientDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		patient, err := repos.Patients.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := change(patient, s.now()); err != nil {
			return service.Rule(err)
		}
		if err := repos.Patients.Update(ctx, patient); err != nil {
			return err
		}
		out = dto.Patient(patient, s.now())
		return nil
	})
	if err != nil {
		return dto.PatientDTO{}, fmt.Errorf("failed to change patient status: %w", err)
	}
	return out, nil
}
