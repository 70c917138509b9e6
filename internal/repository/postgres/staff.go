package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

const staffColumns = `id, first_name, middle_name, last_name, suffix, email, phone, role,
	password_hash, status, last_login_at, created_at, updated_at, deleted_at`

type staffRepository struct {
	BaseRepository
}

func (r *staffRepository) Create(ctx context.Context, s *model.Staff) error {
	query := `
		INSERT INTO staff (
			id, first_name, middle_name, last_name, suffix, email, phone, role,
			password_hash, status, created_at, updated_at
		) VALUES (
			:id, :first_name, :middle_name, :last_name, :suffix, :email, :phone, :role,
			:password_hash, :status, :created_at, :updated_at
		)
	`
	_, err := r.namedExec(ctx, query, s)
	return mapError(err, "create staff", "staff member")
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1 AND deleted_at IS NULL`
	var s model.Staff
	if err := r.getContext(ctx, &s, query, id); err != nil {
		return nil, mapError(err, "get staff", "staff member")
	}
	return &s, nil
}

func (r *staffRepository) GetByEmail(ctx context.Context, email model.Email) (*model.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE email = $1 AND deleted_at IS NULL`
	var s model.Staff
	if err := r.getContext(ctx, &s, query, email); err != nil {
		return nil, mapError(err, "get staff by email", "staff member")
	}
	return &s, nil
}

func (r *staffRepository) Update(ctx context.Context, s *model.Staff) error {
	query := `
		UPDATE staff SET
			first_name = :first_name, middle_name = :middle_name, last_name = :last_name,
			suffix = :suffix, email = :email, phone = :phone, role = :role,
			password_hash = :password_hash, status = :status, last_login_at = :last_login_at,
			updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`
	res, err := r.namedExec(ctx, query, s)
	if err != nil {
		return mapError(err, "update staff", "staff member")
	}
	return expectOne(res, "update staff", "staff member")
}

func (r *staffRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`, at, id)
	if err != nil {
		return mapError(err, "delete staff", "staff member")
	}
	return expectOne(res, "delete staff", "staff member")
}

func (r *staffRepository) List(ctx context.Context, filters model.StaffFilters, page model.Pagination) ([]*model.Staff, int64, error) {
	f := newFilter()
	if filters.Role != "" {
		f.add("role = ?", filters.Role)
	}
	if filters.Status != "" {
		f.add("status = ?", filters.Status)
	}
	f.search(filters.Search, "first_name", "last_name", "email")

	staff := []*model.Staff{}
	total, err := r.list(ctx, &staff, staffColumns, "staff", f, "last_name, first_name", page)
	if err != nil {
		return nil, 0, mapError(err, "list staff", "staff member")
	}
	return staff, total, nil
}
