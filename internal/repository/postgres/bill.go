package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/model"
)

const billColumns = `id, bill_number, patient_id, appointment_id, status, discount, due_date, issued_at,
	created_at, updated_at, deleted_at`

type billRepository struct {
	BaseRepository
}

func (r *billRepository) Create(ctx context.Context, b *model.Bill) error {
	query := `
		INSERT INTO bills (
			id, bill_number, patient_id, appointment_id, status, discount, due_date, issued_at,
			created_at, updated_at
		) VALUES (
			:id, :bill_number, :patient_id, :appointment_id, :status, :discount, :due_date, :issued_at,
			:created_at, :updated_at
		)
	`
	if _, err := r.namedExec(ctx, query, b); err != nil {
		return mapError(err, "create bill", "bill")
	}
	return r.saveChildren(ctx, b)
}

func (r *billRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1 AND deleted_at IS NULL`
	var b model.Bill
	if err := r.getContext(ctx, &b, query, id); err != nil {
		return nil, mapError(err, "get bill", "bill")
	}
	if err := r.hydrate(ctx, []*model.Bill{&b}); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *billRepository) Update(ctx context.Context, b *model.Bill) error {
	query := `
		UPDATE bills SET
			status = :status, discount = :discount, due_date = :due_date, issued_at = :issued_at,
			updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`
	res, err := r.namedExec(ctx, query, b)
	if err != nil {
		return mapError(err, "update bill", "bill")
	}
	if err := expectOne(res, "update bill", "bill"); err != nil {
		return err
	}

	for _, table := range []string{"bill_items", "payments", "insurance_claims"} {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE bill_id = $1`, b.ID); err != nil {
			return mapError(err, "clear "+table, "bill")
		}
	}
	return r.saveChildren(ctx, b)
}

func (r *billRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bills SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`, at, id)
	if err != nil {
		return mapError(err, "delete bill", "bill")
	}
	return expectOne(res, "delete bill", "bill")
}

func (r *billRepository) List(ctx context.Context, filters model.BillFilters, page model.Pagination) ([]*model.Bill, int64, error) {
	f := newFilter()
	if filters.PatientID != uuid.Nil {
		f.add("patient_id = ?", filters.PatientID)
	}
	if filters.Status != "" {
		f.add("status = ?", filters.Status)
	}

	bills := []*model.Bill{}
	total, err := r.list(ctx, &bills, billColumns, "bills", f, "created_at DESC", page)
	if err != nil {
		return nil, 0, mapError(err, "list bills", "bill")
	}
	if err := r.hydrate(ctx, bills); err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

func (r *billRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM bills WHERE patient_id = ? AND deleted_at IS NULL`, patientID)
	return n, mapError(err, "count patient bills", "bill")
}

func (r *billRepository) saveChildren(ctx context.Context, b *model.Bill) error {
	for i := range b.Items {
		_, err := r.namedExec(ctx, `
			INSERT INTO bill_items (id, bill_id, description, quantity, unit_price)
			VALUES (:id, :bill_id, :description, :quantity, :unit_price)
		`, &b.Items[i])
		if err != nil {
			return mapError(err, "save bill item", "bill item")
		}
	}
	for i := range b.Payments {
		_, err := r.namedExec(ctx, `
			INSERT INTO payments (id, bill_id, amount, method, reference, paid_at)
			VALUES (:id, :bill_id, :amount, :method, :reference, :paid_at)
		`, &b.Payments[i])
		if err != nil {
			return mapError(err, "save payment", "payment")
		}
	}
	for i := range b.Claims {
		_, err := r.namedExec(ctx, `
			INSERT INTO insurance_claims (
				id, bill_id, provider, policy_number, claimed_amount, approved_amount, status,
				remarks, submitted_at, resolved_at
			) VALUES (
				:id, :bill_id, :provider, :policy_number, :claimed_amount, :approved_amount, :status,
				:remarks, :submitted_at, :resolved_at
			)
		`, &b.Claims[i])
		if err != nil {
			return mapError(err, "save insurance claim", "insurance claim")
		}
	}
	return nil
}

func (r *billRepository) hydrate(ctx context.Context, bills []*model.Bill) error {
	byID := make(map[uuid.UUID]*model.Bill, len(bills))
	ids := make(pq.StringArray, 0, len(bills))
	for _, b := range bills {
		b.Items = []model.BillItem{}
		b.Payments = []model.Payment{}
		b.Claims = []model.InsuranceClaim{}
		byID[b.ID] = b
		ids = append(ids, b.ID.String())
	}
	if len(ids) == 0 {
		return nil
	}

	var items []model.BillItem
	if err := r.selectContext(ctx, &items, `
		SELECT id, bill_id, description, quantity, unit_price
		FROM bill_items WHERE bill_id = ANY($1::uuid[]) ORDER BY position
	`, ids); err != nil {
		return mapError(err, "load bill items", "bill item")
	}
	for _, i := range items {
		byID[i.BillID].Items = append(byID[i.BillID].Items, i)
	}

	var payments []model.Payment
	if err := r.selectContext(ctx, &payments, `
		SELECT id, bill_id, amount, method, reference, paid_at
		FROM payments WHERE bill_id = ANY($1::uuid[]) ORDER BY paid_at
	`, ids); err != nil {
		return mapError(err, "load payments", "payment")
	}
	for _, p := range payments {
		byID[p.BillID].Payments = append(byID[p.BillID].Payments, p)
	}

	var claims []model.InsuranceClaim
	if err := r.selectContext(ctx, &claims, `
		SELECT id, bill_id, provider, policy_number, claimed_amount, approved_amount, status,
			remarks, submitted_at, resolved_at
		FROM insurance_claims WHERE bill_id = ANY($1::uuid[]) ORDER BY submitted_at
	`, ids); err != nil {
		return mapError(err, "load insurance claims", "insurance claim")
	}
	for _, c := range claims {
		byID[c.BillID].Claims = append(byID[c.BillID].Claims, c)
	}
	return nil
}
