// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

// DoctorRepository is a mock type for the DoctorRepository type
type DoctorRepository struct {
	mock.Mock
}

var _ repository.DoctorRepository = (*DoctorRepository)(nil)

func (_m *DoctorRepository) Create(ctx context.Context, d *model.Doctor) error {
	ret := _m.Called(ctx, d)
	return ret.Error(0)
}

func (_m *DoctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	ret := _m.Called(ctx, id)
	var r0 *model.Doctor
	if rf, ok := ret.Get(0).(*model.Doctor); ok {
		r0 = rf
	}
	return r0, ret.Error(1)
}

func (_m *DoctorRepository) Update(ctx context.Context, d *model.Doctor) error {
	ret := _m.Called(ctx, d)
	return ret.Error(0)
}

func (_m *DoctorRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	ret := _m.Called(ctx, id, at)
	return ret.Error(0)
}

func (_m *DoctorRepository) List(ctx context.Context, filters model.DoctorFilters, page model.Pagination) ([]*model.Doctor, int64, error) {
	ret := _m.Called(ctx, filters, page)
	var r0 []*model.Doctor
	if rf, ok := ret.Get(0).([]*model.Doctor); ok {
		r0 = rf
	}
	return r0, ret.Get(1).(int64), ret.Error(2)
}

// PatientRepository is a mock type for the PatientRepository type
type PatientRepository struct {
	mock.Mock
}

var _ repository.PatientRepository = (*PatientRepository)(nil)

func (_m *PatientRepository) Create(ctx context.Context, p *model.Patient) error {
	ret := _m.Called(ctx, p)
	return ret.Error(0)
}

func (_m *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	ret := _m.Called(ctx, id)
	var r0 *model.Patient
	if rf, ok := ret.Get(0).(*model.Patient); ok {
		r0 = rf
	}
	return r0, ret.Error(1)
}

func (_m *PatientRepository) Update(ctx context.Context, p *model.Patient) error {
	ret := _m.Called(ctx, p)
	return ret.Error(0)
}

func (_m *PatientRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	ret := _m.Called(ctx, id, at)
	return ret.Error(0)
}

func (_m *PatientRepository) List(ctx context.Context, filters model.PatientFilters, page model.Pagination) ([]*model.Patient, int64, error) {
	ret := _m.Called(ctx, filters, page)
	var r0 []*model.Patient
	if rf, ok := ret.Get(0).([]*model.Patient); ok {
		r0 = rf
	}
	return r0, ret.Get(1).(int64), ret.Error(2)
}

// StaffRepository is a mock type for the StaffRepository type
type StaffRepository struct {
	mock.Mock
}

var _ repository.StaffRepository = (*StaffRepository)(nil)

func (_m *StaffRepository) Create(ctx context.Context, s *model.Staff) error {
	ret := _m.Called(ctx, s)
	return ret.Error(0)
}

func (_m *StaffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	ret := _m.Called(ctx, id)
	var r0 *model.Staff
	if rf, ok := ret.Get(0).(*model.Staff); ok {
		r0 = rf
	}
	return r0, ret.Error(1)
}

func (_m *StaffRepository) Update(ctx context.Context, s *model.Staff) error {
	ret := _m.Called(ctx, s)
	return ret.Error(0)
}

func (_m *StaffRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	ret := _m.Called(ctx, id, at)
	return ret.Error(0)
}

func (_m *StaffRepository) List(ctx context.Context, filters model.StaffFilters, page model.Pagination) ([]*model.Staff, int64, error) {
	ret := _m.Called(ctx, filters, page)
	var r0 []*model.Staff
	if rf, ok := ret.Get(0).([]*model.Staff); ok {
		r0 = rf
	}
	return r0, ret.Get(1).(int64), ret.Error(2)
}

func (_m *StaffRepository) GetByEmail(ctx context.Context, email model.Email) (*model.Staff, error) {
	ret := _m.Called(ctx, email)
	var r0 *model.Staff
	if rf, ok := ret.Get(0).(*model.Staff); ok {
		r0 = rf
	}
	return r0, ret.Error(1)
}

// AppointmentRepository is a mock type for the AppointmentRepository type
type AppointmentRepository struct {
	mock.Mock
}

var _ repository.AppointmentRepository = (*AppointmentRepository)(nil)

func (_m *AppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	ret := _m.Called(ctx, a)
	return ret.Error(0)
}

func (_m *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	ret := _m.Called(ctx, id)
	var r0 *model.Appointment
	if rf, ok := ret.Get(0).(*model.Appointment); ok {
		r0 = rf
	}
	return r0, ret.Error(1)
}

func (_m *AppointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	ret := _m.Called(ctx, a)
	return ret.Error(0)
}

func (_m *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	ret := _m.Called(ctx, id, at)
	return ret.Error(0)
}

func (_m *AppointmentRepository) List(ctx context.Context, filters model.AppointmentFilters, page model.Pagination) ([]*model.Appointment, int64, error) {
	ret := _m.Called(ctx, filters, page)
	var r0 []*model.Appointment
	if rf, ok := ret.Get(0).([]*model.Appointment); ok {
		r0 = rf
	}
	return r0, ret.Get(1).(int64), ret.Error(2)
}

func (_m *AppointmentRepository) ListBlocking(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	ret := _m.Called(ctx, doctorID, from, to)
	var r0 []*model.Appointment
	if rf, ok := ret.Get(0).([]*model.Appointment); ok {
		r0 = rf
	}
	return r0, ret.Error(1)
}

func (_m *AppointmentRepository) CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	ret := _m.Called(ctx, doctorID)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *AppointmentRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	ret := _m.Called(ctx, patientID)
	return ret.Get(0).(int64), ret.Error(1)
}

// MedicalRecordRepository is a mock type for the MedicalRecordRepository type
type MedicalRecordRepository struct {
	mock.Mock
}

var _ repository.MedicalRecordRepository = (*MedicalRecordRepository)(nil)

func (_m *MedicalRecordRepository) Create(ctx context.Context, m *model.MedicalRecord) error {
	ret := _m.Called(ctx, m)
	return ret.Error(0)
}

func (_m *MedicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	ret := _m.Called(ctx, id)
	var r0 *model.MedicalRecord
	if rf, ok := ret.Get(0).(*model.MedicalRecord); ok {
		r0 = rf
	}
	return r0, ret.Error(1)
}

func (_m *MedicalRecordRepository) Update(ctx context.Context, m *model.MedicalRecord) error {
	ret := _m.Called(ctx, m)
	return ret.Error(0)
}

func (_m *MedicalRecordRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	ret := _m.Called(ctx, id, at)
	return ret.Error(0)
}

func (_m *MedicalRecordRepository) List(ctx context.Context, filters model.MedicalRecordFilters, page model.Pagination) ([]*model.MedicalRecord, int64, error) {
	ret := _m.Called(ctx, filters, page)
	var r0 []*model.MedicalRecord
	if rf, ok := ret.Get(0).([]*model.MedicalRecord); ok {
		r0 = rf
	}
	return r0, ret.Get(1).(int64), ret.Error(2)
}

func (_m *MedicalRecordRepository) CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	ret := _m.Called(ctx, doctorID)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *MedicalRecordRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	ret := _m.Called(ctx, patientID)
	return ret.Get(0).(int64), ret.Error(1)
}

// BillRepository is a mock type for the BillRepository type
type BillRepository struct {
	mock.Mock
}

var _ repository.BillRepository = (*BillRepository)(nil)

func (_m *BillRepository) Create(ctx context.Context, b *model.Bill) error {
	ret := _m.Called(ctx, b)
	return ret.Error(0)
}

func (_m *BillRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	ret := _m.Called(ctx, id)
	var r0 *model.Bill
	if rf, ok := ret.Get(0).(*model.Bill); ok {
		r0 = rf
	}
	return r0, ret.Error(1)
}

func (_m *BillRepository) Update(ctx context.Context, b *model.Bill) error {
	ret := _m.Called(ctx, b)
	return ret.Error(0)
}

func (_m *BillRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	ret := _m.Called(ctx, id, at)
	return ret.Error(0)
}

func (_m *BillRepository) List(ctx context.Context, filters model.BillFilters, page model.Pagination) ([]*model.Bill, int64, error) {
	ret := _m.Called(ctx, filters, page)
	var r0 []*model.Bill
	if rf, ok := ret.Get(0).([]*model.Bill); ok {
		r0 = rf
	}
	return r0, ret.Get(1).(int64), ret.Error(2)
}

func (_m *BillRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	ret := _m.Called(ctx, patientID)
	return ret.Get(0).(int64), ret.Error(1)
}

// OutboxRepository is a mock type for the OutboxRepository type
type OutboxRepository struct {
	mock.Mock
}

var _ repository.OutboxRepository = (*OutboxRepository)(nil)

func (_m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

func (_m *OutboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	ret := _m.Called(ctx, limit)
	var r0 []*model.OutboxEvent
	if rf, ok := ret.Get(0).([]*model.OutboxEvent); ok {
		r0 = rf
	}
	return r0, ret.Error(1)
}

func (_m *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	ret := _m.Called(ctx, id, at)
	return ret.Error(0)
}

func (_m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error {
	ret := _m.Called(ctx, id, errorMessage, retryAt)
	return ret.Error(0)
}

func (_m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	ret := _m.Called(ctx, before)
	return ret.Get(0).(int64), ret.Error(1)
}
