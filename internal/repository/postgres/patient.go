package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

const patientColumns = `id, first_name, middle_name, last_name, suffix, street, barangay, city, province,
	zip_code, date_of_birth, sex, email, phone, blood_type, emergency_contact_name,
	emergency_contact_phone, status, created_at, updated_at, deleted_at`

type patientRepository struct {
	BaseRepository
}

func (r *patientRepository) Create(ctx context.Context, p *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, first_name, middle_name, last_name, suffix, street, barangay, city, province,
			zip_code, date_of_birth, sex, email, phone, blood_type, emergency_contact_name,
			emergency_contact_phone, status, created_at, updated_at
		) VALUES (
			:id, :first_name, :middle_name, :last_name, :suffix, :street, :barangay, :city, :province,
			:zip_code, :date_of_birth, :sex, :email, :phone, :blood_type, :emergency_contact_name,
			:emergency_contact_phone, :status, :created_at, :updated_at
		)
	`
	_, err := r.namedExec(ctx, query, p)
	return mapError(err, "create patient", "patient")
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1 AND deleted_at IS NULL`
	var p model.Patient
	if err := r.getContext(ctx, &p, query, id); err != nil {
		return nil, mapError(err, "get patient", "patient")
	}
	return &p, nil
}

func (r *patientRepository) Update(ctx context.Context, p *model.Patient) error {
	query := `
		UPDATE patients SET
			first_name = :first_name, middle_name = :middle_name, last_name = :last_name,
			suffix = :suffix, street = :street, barangay = :barangay, city = :city,
			province = :province, zip_code = :zip_code, date_of_birth = :date_of_birth,
			sex = :sex, email = :email, phone = :phone, blood_type = :blood_type,
			emergency_contact_name = :emergency_contact_name,
			emergency_contact_phone = :emergency_contact_phone,
			status = :status, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`
	res, err := r.namedExec(ctx, query, p)
	if err != nil {
		return mapError(err, "update patient", "patient")
	}
	return expectOne(res, "update patient", "patient")
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE patients SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`, at, id)
	if err != nil {
		return mapError(err, "delete patient", "patient")
	}
	return expectOne(res, "delete patient", "patient")
}

func (r *patientRepository) List(ctx context.Context, filters model.PatientFilters, page model.Pagination) ([]*model.Patient, int64, error) {
	f := newFilter()
	if filters.Status != "" {
		f.add("status = ?", filters.Status)
	}
	f.search(filters.Search, "first_name", "last_name", "email", "phone")

	patients := []*model.Patient{}
	total, err := r.list(ctx, &patients, patientColumns, "patients", f, "last_name, first_name", page)
	if err != nil {
		return nil, 0, mapError(err, "list patients", "patient")
	}
	return patients, total, nil
}
