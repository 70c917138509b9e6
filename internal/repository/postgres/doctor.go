package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

const doctorColumns = `id, first_name, middle_name, last_name, suffix, specialization, license_number,
	email, phone, consultation_fee, status, created_at, updated_at, deleted_at`

type doctorRepository struct {
	BaseRepository
}

func (r *doctorRepository) Create(ctx context.Context, d *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, first_name, middle_name, last_name, suffix, specialization, license_number,
			email, phone, consultation_fee, status, created_at, updated_at
		) VALUES (
			:id, :first_name, :middle_name, :last_name, :suffix, :specialization, :license_number,
			:email, :phone, :consultation_fee, :status, :created_at, :updated_at
		)
	`
	_, err := r.namedExec(ctx, query, d)
	return mapError(err, "create doctor", "doctor")
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1 AND deleted_at IS NULL`
	var d model.Doctor
	if err := r.getContext(ctx, &d, query, id); err != nil {
		return nil, mapError(err, "get doctor", "doctor")
	}
	return &d, nil
}

func (r *doctorRepository) Update(ctx context.Context, d *model.Doctor) error {
	query := `
		UPDATE doctors SET
			first_name = :first_name, middle_name = :middle_name, last_name = :last_name,
			suffix = :suffix, specialization = :specialization, license_number = :license_number,
			email = :email, phone = :phone, consultation_fee = :consultation_fee,
			status = :status, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`
	res, err := r.namedExec(ctx, query, d)
	if err != nil {
		return mapError(err, "update doctor", "doctor")
	}
	return expectOne(res, "update doctor", "doctor")
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE doctors SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`, at, id)
	if err != nil {
		return mapError(err, "delete doctor", "doctor")
	}
	return expectOne(res, "delete doctor", "doctor")
}

func (r *doctorRepository) List(ctx context.Context, filters model.DoctorFilters, page model.Pagination) ([]*model.Doctor, int64, error) {
	f := newFilter()
	if filters.Specialization != "" {
		f.add("specialization ILIKE ?", filters.Specialization)
	}
	if filters.Status != "" {
		f.add("status = ?", filters.Status)
	}
	f.search(filters.Search, "first_name", "last_name", "license_number", "email")

	doctors := []*model.Doctor{}
	total, err := r.list(ctx, &doctors, doctorColumns, "doctors", f, "last_name, first_name", page)
	if err != nil {
		return nil, 0, mapError(err, "list doctors", "doctor")
	}
	return doctors, total, nil
}
