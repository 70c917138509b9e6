package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/repository"
)

// UnitOfWork runs fn directly against the mocked repositories. Commits counts successful
// units, Rollbacks failed ones.
type UnitOfWork struct {
	Doctors        *DoctorRepository
	Patients       *PatientRepository
	Staff          *StaffRepository
	Appointments   *AppointmentRepository
	MedicalRecords *MedicalRecordRepository
	Bills          *BillRepository
	Outbox         *OutboxRepository

	Commits   int
	Rollbacks int
}

func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		Doctors:        &DoctorRepository{},
		Patients:       &PatientRepository{},
		Staff:          &StaffRepository{},
		Appointments:   &AppointmentRepository{},
		MedicalRecords: &MedicalRecordRepository{},
		Bills:          &BillRepository{},
		Outbox:         &OutboxRepository{},
	}
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	err := fn(ctx, repository.Repositories{
		Doctors:        u.Doctors,
		Patients:       u.Patients,
		Staff:          u.Staff,
		Appointments:   u.Appointments,
		MedicalRecords: u.MedicalRecords,
		Bills:          u.Bills,
		Outbox:         u.Outbox,
	})
	if err != nil {
		u.Rollbacks++
		return err
	}
	u.Commits++
	return nil
}

// AssertExpectations checks every repository mock
func (u *UnitOfWork) AssertExpectations(t mock.TestingT) {
	u.Doctors.AssertExpectations(t)
	u.Patients.AssertExpectations(t)
	u.Staff.AssertExpectations(t)
	u.Appointments.AssertExpectations(t)
	u.MedicalRecords.AssertExpectations(t)
	u.Bills.AssertExpectations(t)
	u.Outbox.AssertExpectations(t)
}
