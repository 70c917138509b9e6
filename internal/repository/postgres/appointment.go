package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

const appointmentColumns = `id, patient_id, doctor_id, start_time, end_time, reason, notes, status,
	cancel_reason, created_at, updated_at, deleted_at`

type appointmentRepository struct {
	BaseRepository
}

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, start_time, end_time, reason, notes, status,
			cancel_reason, created_at, updated_at
		) VALUES (
			:id, :patient_id, :doctor_id, :start_time, :end_time, :reason, :notes, :status,
			:cancel_reason, :created_at, :updated_at
		)
	`
	_, err := r.namedExec(ctx, query, a)
	return mapError(err, "create appointment", "appointment")
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 AND deleted_at IS NULL`
	var a model.Appointment
	if err := r.getContext(ctx, &a, query, id); err != nil {
		return nil, mapError(err, "get appointment", "appointment")
	}
	return &a, nil
}

func (r *appointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	query := `
		UPDATE appointments SET
			start_time = :start_time, end_time = :end_time, reason = :reason, notes = :notes,
			status = :status, cancel_reason = :cancel_reason, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`
	res, err := r.namedExec(ctx, query, a)
	if err != nil {
		return mapError(err, "update appointment", "appointment")
	}
	return expectOne(res, "update appointment", "appointment")
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`, at, id)
	if err != nil {
		return mapError(err, "delete appointment", "appointment")
	}
	return expectOne(res, "delete appointment", "appointment")
}

func (r *appointmentRepository) List(ctx context.Context, filters model.AppointmentFilters, page model.Pagination) ([]*model.Appointment, int64, error) {
	f := newFilter()
	if filters.DoctorID != uuid.Nil {
		f.add("doctor_id = ?", filters.DoctorID)
	}
	if filters.PatientID != uuid.Nil {
		f.add("patient_id = ?", filters.PatientID)
	}
	if filters.Status != "" {
		f.add("status = ?", filters.Status)
	}
	if !filters.StartDate.IsZero() {
		f.add("start_time >= ?", filters.StartDate)
	}
	if !filters.EndDate.IsZero() {
		f.add("start_time < ?", filters.EndDate)
	}

	appointments := []*model.Appointment{}
	total, err := r.list(ctx, &appointments, appointmentColumns, "appointments", f, "start_time", page)
	if err != nil {
		return nil, 0, mapError(err, "list appointments", "appointment")
	}
	return appointments, total, nil
}

func (r *appointmentRepository) ListBlocking(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1
		AND status IN ('scheduled', 'in_progress')
		AND start_time >= $2 AND start_time < $3
		AND deleted_at IS NULL
		ORDER BY start_time
	`
	appointments := []*model.Appointment{}
	if err := r.selectContext(ctx, &appointments, query, doctorID, from, to); err != nil {
		return nil, mapError(err, "list doctor appointments", "appointment")
	}
	return appointments, nil
}

func (r *appointmentRepository) CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM appointments WHERE doctor_id = ? AND deleted_at IS NULL`, doctorID)
	return n, mapError(err, "count doctor appointments", "appointment")
}

func (r *appointmentRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM appointments WHERE patient_id = ? AND deleted_at IS NULL`, patientID)
	return n, mapError(err, "count patient appointments", "appointment")
}
