package medicalrecord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

var ErrAppointmentMismatch = errors.New("appointment does not match the record's patient and doctor")

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
	mediator.Register(m, s.UpdateNotes)
	mediator.Register(m, s.RecordVitalSigns)
	mediator.Register(m, s.AddDiagnosis)
	mediator.Register(m, s.AddPrescription)
	mediator.Register(m, s.Delete)
	mediator.Register(m, s.Get)
	mediator.Register(m, s.List)
}

func (s *Service) Create(ctx context.Context, cmd CreateMedicalRecordCommand) (dto.MedicalRecordDTO, error) {
	now := s.now()
	visit := cmd.VisitDate.Time
	if visit.IsZero() {
		visit = now
	}
	record, err := model.NewMedicalRecord(cmd.PatientID, cmd.DoctorID, cmd.AppointmentID, visit, cmd.ChiefComplaint, cmd.Notes, now)
	if err != nil {
		return dto.MedicalRecordDTO{}, service.Invalid("visit_date", err)
	}

	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Patients.Get(ctx, cmd.PatientID); err != nil {
			return err
		}
		if _, err := repos.Doctors.Get(ctx, cmd.DoctorID); err != nil {
			return err
		}
		if cmd.AppointmentID != nil {
			a, err := repos.Appointments.Get(ctx, *cmd.AppointmentID)
			if err != nil {
				return err
			}
			if a.PatientID != cmd.PatientID || a.DoctorID != cmd.DoctorID {
				return service.Rule(ErrAppointmentMismatch)
			}
		}
		return repos.MedicalRecords.Create(ctx, record)
	})
	if err != nil {
		return dto.MedicalRecordDTO{}, fmt.Errorf("failed to create medical record: %w", err)
	}
	return dto.MedicalRecord(record), nil
}

func (s *Service) UpdateNotes(ctx context.Context, cmd UpdateMedicalRecordNotesCommand) (dto.MedicalRecordDTO, error) {
	return s.mutate(ctx, cmd.ID, "update notes on", func(r *model.MedicalRecord, now time.Time) error {
		r.UpdateNotes(cmd.ChiefComplaint, cmd.Notes, now)
		return nil
	})
}

func (s *Service) RecordVitalSigns(ctx context.Context, cmd RecordVitalSignsCommand) (dto.MedicalRecordDTO, error) {
	return s.mutate(ctx, cmd.RecordID, "record vital signs on", func(r *model.MedicalRecord, now time.Time) error {
		if _, err := r.RecordVitalSigns(cmd.vitals(), now); err != nil {
			return service.Invalid("vital_signs", err)
		}
		return nil
	})
}

func (s *Service) AddDiagnosis(ctx context.Context, cmd AddDiagnosisCommand) (dto.MedicalRecordDTO, error) {
	return s.mutate(ctx, cmd.RecordID, "add diagnosis to", func(r *model.MedicalRecord, now time.Time) error {
		_, err := r.AddDiagnosis(cmd.Code, cmd.Description, cmd.Primary, now)
		if errors.Is(err, model.ErrInvalidDiagnosisCode) {
			return service.Invalid("code", err)
		}
		return err
	})
}

func (s *Service) AddPrescription(ctx context.Context, cmd AddPrescriptionCommand) (dto.MedicalRecordDTO, error) {
	return s.mutate(ctx, cmd.RecordID, "add prescription to", func(r *model.MedicalRecord, now time.Time) error {
		if _, err := r.AddPrescription(cmd.Medication, cmd.Dosage, cmd.Frequency, cmd.DurationDays, cmd.Instructions, now); err != nil {
			return service.Invalid("prescription", err)
		}
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, cmd DeleteMedicalRecordCommand) (struct{}, error) {
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.MedicalRecords.Get(ctx, cmd.ID); err != nil {
			return err
		}
		return repos.MedicalRecords.Delete(ctx, cmd.ID, s.now())
	})
	if err != nil {
		return struct{}{}, fmt.Errorf("failed to delete medical record: %w", err)
	}
	return struct{}{}, nil
}

func (s *Service) Get(ctx context.Context, q GetMedicalRecordQuery) (dto.MedicalRecordDTO, error) {
	var out dto.MedicalRecordDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		record, err := repos.MedicalRecords.Get(ctx, q.ID)
		if err != nil {
			return err
		}
		out = dto.MedicalRecord(record)
		return nil
	})
	if err != nil {
		return dto.MedicalRecordDTO{}, fmt.Errorf("failed to get medical record: %w", err)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, q ListMedicalRecordsQuery) (dto.Page[dto.MedicalRecordDTO], error) {
	page := q.Pagination()
	var out dto.Page[dto.MedicalRecordDTO]
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		records, total, err := repos.MedicalRecords.List(ctx, model.MedicalRecordFilters{PatientID: q.PatientID, DoctorID: q.DoctorID}, page)
		if err != nil {
			return err
		}
		out = dto.NewPage(records, page, total, dto.MedicalRecord)
		return nil
	})
	if err != nil {
		return dto.Page[dto.MedicalRecordDTO]{}, fmt.Errorf("failed to list medical records: %w", err)
	}
	return out, nil
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, op string, change func(*model.MedicalRecord, time.Time) error) (dto.MedicalRecordDTO, error) {
	var out dto.MedicalRecordDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		record, err := repos.MedicalRecords.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := change(record, s.now()); err != nil {
			return service.Rule(err)
		}
		if err := repos.MedicalRecords.Update(ctx, record); err != nil {
			return err
		}
		out = dto.MedicalRecord(record)
		return nil
	})
	if err != nil {
		return dto.MedicalRecordDTO{}, fmt.Errorf("failed to %s medical record: %w", op, err)
	}
	return out, nil
}
