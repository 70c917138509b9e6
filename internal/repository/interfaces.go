package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// All repository interfaces in one file. Get returns a NotFound AppError for missing or
// soft-deleted rows. List returns one page plus the total match count.
type (
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID, at time.Time) error
		List(ctx context.Context, filters model.DoctorFilters, page model.Pagination) ([]*model.Doctor, int64, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID, at time.Time) error
		List(ctx context.Context, filters model.PatientFilters, page model.Pagination) ([]*model.Patient, int64, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.Staff) error
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		GetByEmail(ctx context.Context, email model.Email) (*model.Staff, error)
		Update(ctx context.Context, staff *model.Staff) error
		Delete(ctx context.Context, id uuid.UUID, at time.Time) error
		List(ctx context.Context, filters model.StaffFilters, page model.Pagination) ([]*model.Staff, int64, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID, at time.Time) error
		List(ctx context.Context, filters model.AppointmentFilters, page model.Pagination) ([]*model.Appointment, int64, error)
		// ListBlocking returns the doctor's scheduled or in-progress appointments starting in [from, to)
		ListBlocking(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
		CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error)
		CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
		// Update saves the record and replaces its vital signs, diagnoses and prescriptions
		Update(ctx context.Context, record *model.MedicalRecord) error
		Delete(ctx context.Context, id uuid.UUID, at time.Time) error
		List(ctx context.Context, filters model.MedicalRecordFilters, page model.Pagination) ([]*model.MedicalRecord, int64, error)
		CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error)
		CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
	}

	BillRepository interface {
		Create(ctx context.Context, bill *model.Bill) error
		Get(ctx context.Context, id uuid.UUID) (*model.Bill, error)
		// Update saves the bill and replaces its items, payments and claims
		Update(ctx context.Context, bill *model.Bill) error
		Delete(ctx context.Context, id uuid.UUID, at time.Time) error
		List(ctx context.Context, filters model.BillFilters, page model.Pagination) ([]*model.Bill, int64, error)
		CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// GetPendingEventsWithLock locks due events until the surrounding transaction ends
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)

// Repositories is the set handed to a unit of work. All members share one transaction.
type Repositories struct {
	Doctors        DoctorRepository
	Patients       PatientRepository
	Staff          StaffRepository
	Appointments   AppointmentRepository
	MedicalRecords MedicalRecordRepository
	Bills          BillRepository
	Outbox         OutboxRepository
}

// UnitOfWork commits everything fn does atomically. Any error or panic rolls back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Pinger reports database health
type Pinger interface {
	PingContext(ctx context.Context) error
}
