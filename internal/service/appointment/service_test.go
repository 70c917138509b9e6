package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/internal/service"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// Monday morning; the clinic runs on UTC in these tests
var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

var tuesday = time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func newService(uow *mocks.UnitOfWork) *Service {
	return NewService(uow, Schedule{Hours: model.DefaultWorkingHours(time.UTC), SlotLength: 30 * time.Minute}, clock)
}

func at(hour, minute int) time.Time {
	return tuesday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func booking(t *testing.T, doctorID uuid.UUID, start time.Time, d time.Duration) *model.Appointment {
	t.Helper()
	a, err := model.NewAppointment(uuid.New(), doctorID, start, d, "checkup", now.Add(-time.Hour))
	require.NoError(t, err)
	return a
}

func activeDoctor(t *testing.T) *model.Doctor {
	t.Helper()
	name, _ := model.NewFullName("Jose", "", "Rizal", "")
	d, err := model.NewDoctor(name, "Ophthalmology", "0123456", "jose@clinic.ph", "+639171234567", 0, now.Add(-time.Hour))
	require.NoError(t, err)
	return d
}

func activePatient(t *testing.T) *model.Patient {
	t.Helper()
	name, _ := model.NewFullName("Maria", "", "Clara", "")
	addr, _ := model.NewAddress("1 Rizal St", "Poblacion", "Makati", "Metro Manila", "")
	p, err := model.NewPatient(model.PatientDetails{Name: name, DateOfBirth: now.AddDate(-30, 0, 0), Sex: model.SexFemale}, "+639171234567", nil, addr, now.Add(-time.Hour))
	require.NoError(t, err)
	return p
}

func outboxEvent(eventType string) interface{} {
	return mock.MatchedBy(func(e *model.OutboxEvent) bool { return e.EventType == eventType })
}

func TestCheckAvailability(t *testing.T) {
	doctor := activeDoctor(t)
	cancelled := booking(t, doctor.ID, at(11, 0), 30*time.Minute)
	require.NoError(t, cancelled.Cancel("sick", now))

	tests := []struct {
		name      string
		start     time.Time
		minutes   int
		booked    []*model.Appointment
		available bool
	}{
		{name: "free slot", start: at(10, 0), minutes: 30, available: true},
		{name: "before opening", start: at(7, 30), minutes: 30},
		{name: "runs past closing", start: at(16, 45), minutes: 30},
		{name: "saturday", start: at(10, 0).AddDate(0, 0, 4), minutes: 30},
		{name: "overlaps booking", start: at(10, 0), minutes: 30, booked: []*model.Appointment{booking(t, doctor.ID, at(10, 15), 30*time.Minute)}},
		{name: "ends when booking starts", start: at(9, 30), minutes: 30, booked: []*model.Appointment{booking(t, doctor.ID, at(10, 0), 30*time.Minute)}, available: true},
		{name: "cancelled booking ignored", start: at(11, 0), booked: []*model.Appointment{cancelled}, available: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow := mocks.NewUnitOfWork()
			uow.Doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
			uow.Appointments.On("ListBlocking", mock.Anything, doctor.ID, mock.Anything, mock.Anything).Return(tt.booked, nil).Maybe()

			out, err := newService(uow).CheckAvailability(context.Background(), CheckAvailabilityQuery{
				DoctorID: doctor.ID,
				Window:   Window{StartTime: tt.start, DurationMinutes: tt.minutes},
			})

			require.NoError(t, err)
			assert.Equal(t, tt.available, out.Available)
			assert.Equal(t, tt.start, out.Start)
		})
	}
}

func TestAvailableSlots(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	doctor := activeDoctor(t)
	uow.Doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
	uow.Appointments.On("ListBlocking", mock.Anything, doctor.ID, tuesday, tuesday.AddDate(0, 0, 1)).
		Return([]*model.Appointment{booking(t, doctor.ID, at(10, 0), time.Hour)}, nil)

	slots, err := newService(uow).AvailableSlots(context.Background(), AvailableSlotsQuery{
		DoctorID: doctor.ID,
		Date:     service.Date{Time: tuesday},
	})

	require.NoError(t, err)
	require.Len(t, slots, 16)
	assert.Equal(t, at(8, 0), slots[0].Start)
	assert.Equal(t, at(9, 30), slots[3].Start)
	assert.Equal(t, at(11, 0), slots[4].Start)
	assert.Equal(t, at(17, 0), slots[len(slots)-1].End)
}

func TestSchedule(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	doctor, patient := activeDoctor(t), activePatient(t)
	uow.Doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
	uow.Patients.On("Get", mock.Anything, patient.ID).Return(patient, nil)
	uow.Appointments.On("ListBlocking", mock.Anything, doctor.ID, mock.Anything, mock.Anything).Return([]*model.Appointment{}, nil)
	uow.Appointments.On("Create", mock.Anything, mock.AnythingOfType("*model.Appointment")).Return(nil)
	uow.Outbox.On("Create", mock.Anything, outboxEvent(model.EventAppointmentScheduled)).Return(nil)

	out, err := newService(uow).Schedule(context.Background(), ScheduleAppointmentCommand{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Window:    Window{StartTime: at(10, 0), DurationMinutes: 45},
		Reason:    "eye exam",
	})

	require.NoError(t, err)
	assert.Equal(t, "scheduled", out.Status)
	assert.Equal(t, at(10, 45), out.EndTime)
	assert.Equal(t, 45, out.DurationMinutes)
	uow.AssertExpectations(t)
}

func TestScheduleRefusals(t *testing.T) {
	t.Run("double booking", func(t *testing.T) {
		uow := mocks.NewUnitOfWork()
		doctor, patient := activeDoctor(t), activePatient(t)
		uow.Doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
		uow.Patients.On("Get", mock.Anything, patient.ID).Return(patient, nil)
		uow.Appointments.On("ListBlocking", mock.Anything, doctor.ID, mock.Anything, mock.Anything).
			Return([]*model.Appointment{booking(t, doctor.ID, at(10, 0), 30*time.Minute)}, nil)

		_, err := newService(uow).Schedule(context.Background(), ScheduleAppointmentCommand{
			PatientID: patient.ID, DoctorID: doctor.ID, Window: Window{StartTime: at(10, 0)}, Reason: "checkup",
		})

		assert.True(t, apperrors.Is(err, apperrors.ErrBusinessRule))
		assert.ErrorIs(t, err, ErrDoctorUnavailable)
		uow.Appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Equal(t, 1, uow.Rollbacks)
	})

	t.Run("inactive doctor", func(t *testing.T) {
		uow := mocks.NewUnitOfWork()
		doctor := activeDoctor(t)
		require.NoError(t, doctor.Deactivate(now))
		uow.Doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)

		_, err := newService(uow).Schedule(context.Background(), ScheduleAppointmentCommand{
			PatientID: uuid.New(), DoctorID: doctor.ID, Window: Window{StartTime: at(10, 0)}, Reason: "checkup",
		})

		assert.ErrorIs(t, err, ErrDoctorInactive)
	})

	t.Run("start in the past", func(t *testing.T) {
		uow := mocks.NewUnitOfWork()

		_, err := newService(uow).Schedule(context.Background(), ScheduleAppointmentCommand{
			PatientID: uuid.New(), DoctorID: uuid.New(), Window: Window{StartTime: now.Add(-time.Hour)}, Reason: "checkup",
		})

		assert.ErrorIs(t, err, ErrStartInPast)
		assert.Equal(t, 0, uow.Commits+uow.Rollbacks)
	})
}

func TestRescheduleIgnoresItself(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	doctorID := uuid.New()
	a := booking(t, doctorID, at(10, 0), 30*time.Minute)
	uow.Appointments.On("Get", mock.Anything, a.ID).Return(a, nil)
	uow.Appointments.On("ListBlocking", mock.Anything, doctorID, mock.Anything, mock.Anything).Return([]*model.Appointment{a}, nil)
	uow.Appointments.On("Update", mock.Anything, mock.AnythingOfType("*model.Appointment")).Return(nil)
	uow.Outbox.On("Create", mock.Anything, outboxEvent(model.EventAppointmentRescheduled)).Return(nil)

	out, err := newService(uow).Reschedule(context.Background(), RescheduleAppointmentCommand{
		ID:     a.ID,
		Window: Window{StartTime: at(10, 15), DurationMinutes: 30},
	})

	require.NoError(t, err)
	assert.Equal(t, at(10, 15), out.StartTime)
	uow.AssertExpectations(t)
}

func TestCancelWritesEvent(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	a := booking(t, uuid.New(), at(10, 0), 30*time.Minute)
	uow.Appointments.On("Get", mock.Anything, a.ID).Return(a, nil)
	uow.Appointments.On("Update", mock.Anything, a).Return(nil)
	uow.Outbox.On("Create", mock.Anything, outboxEvent(model.EventAppointmentCancelled)).Return(nil)

	out, err := newService(uow).Cancel(context.Background(), CancelAppointmentCommand{ID: a.ID, Reason: "travel"})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", out.Status)
	assert.Equal(t, "travel", out.CancelReason)
	uow.AssertExpectations(t)
}

func TestCompleteRequiresStart(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	a := booking(t, uuid.New(), at(10, 0), 30*time.Minute)
	uow.Appointments.On("Get", mock.Anything, a.ID).Return(a, nil)

	_, err := newService(uow).Complete(context.Background(), CompleteAppointmentCommand{ID: a.ID})

	assert.True(t, apperrors.Is(err, apperrors.ErrBusinessRule))
	assert.ErrorIs(t, err, model.ErrAppointmentNotStarted)
	uow.Appointments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteOnlyCancelled(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	a := booking(t, uuid.New(), at(10, 0), 30*time.Minute)
	uow.Appointments.On("Get", mock.Anything, a.ID).Return(a, nil)

	_, err := newService(uow).Delete(context.Background(), DeleteAppointmentCommand{ID: a.ID})
	assert.ErrorIs(t, err, ErrNotCancelled)

	require.NoError(t, a.Cancel("duplicate", now))
	uow.Appointments.On("Delete", mock.Anything, a.ID, now).Return(nil)

	_, err = newService(uow).Delete(context.Background(), DeleteAppointmentCommand{ID: a.ID})
	require.NoError(t, err)
}

func TestListUsesClinicDays(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	want := model.AppointmentFilters{StartDate: tuesday, EndDate: tuesday.AddDate(0, 0, 2)}
	uow.Appointments.On("List", mock.Anything, want, model.Pagination{Page: 1, PageSize: model.DefaultPageSize}).
		Return([]*model.Appointment{}, int64(0), nil)

	page, err := newService(uow).List(context.Background(), ListAppointmentsQuery{
		From: service.Date{Time: tuesday},
		To:   service.Date{Time: tuesday.AddDate(0, 0, 1)},
	})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
