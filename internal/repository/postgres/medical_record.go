package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

const medicalRecordColumns = `id, patient_id, doctor_id, appointment_id, visit_date, chief_complaint,
	notes_encrypted, created_at, updated_at, deleted_at`

// medicalRecordRow stores clinical notes encrypted at rest
type medicalRecordRow struct {
	model.MedicalRecord
	NotesEncrypted []byte `db:"notes_encrypted"`
}

type medicalRecordRepository struct {
	BaseRepository
	encryptor security.Encryptor
}

func (r *medicalRecordRepository) Create(ctx context.Context, rec *model.MedicalRecord) error {
	notes, err := r.seal(rec.Notes)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO medical_records (
			id, patient_id, doctor_id, appointment_id, visit_date, chief_complaint,
			notes_encrypted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.PatientID, rec.DoctorID, rec.AppointmentID, rec.VisitDate,
		rec.ChiefComplaint, notes, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "create medical record", "medical record")
	}
	return r.saveChildren(ctx, rec)
}

func (r *medicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE id = $1 AND deleted_at IS NULL`
	var row medicalRecordRow
	if err := r.getContext(ctx, &row, query, id); err != nil {
		return nil, mapError(err, "get medical record", "medical record")
	}
	records, err := r.hydrate(ctx, []*medicalRecordRow{&row})
	if err != nil {
		return nil, err
	}
	return records[0], nil
}

func (r *medicalRecordRepository) Update(ctx context.Context, rec *model.MedicalRecord) error {
	notes, err := r.seal(rec.Notes)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_records
		SET chief_complaint = $1, notes_encrypted = $2, updated_at = $3
		WHERE id = $4 AND deleted_at IS NULL
	`, rec.ChiefComplaint, notes, rec.UpdatedAt, rec.ID)
	if err != nil {
		return mapError(err, "update medical record", "medical record")
	}
	if err := expectOne(res, "update medical record", "medical record"); err != nil {
		return err
	}

	for _, table := range []string{"vital_signs", "diagnoses", "prescriptions"} {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE record_id = $1`, rec.ID); err != nil {
			return mapError(err, "clear "+table, "medical record")
		}
	}
	return r.saveChildren(ctx, rec)
}

func (r *medicalRecordRepository) Delete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE medical_records SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`, at, id)
	if err != nil {
		return mapError(err, "delete medical record", "medical record")
	}
	return expectOne(res, "delete medical record", "medical record")
}

func (r *medicalRecordRepository) List(ctx context.Context, filters model.MedicalRecordFilters, page model.Pagination) ([]*model.MedicalRecord, int64, error) {
	f := newFilter()
	if filters.PatientID != uuid.Nil {
		f.add("patient_id = ?", filters.PatientID)
	}
	if filters.DoctorID != uuid.Nil {
		f.add("doctor_id = ?", filters.DoctorID)
	}

	rows := []*medicalRecordRow{}
	total, err := r.list(ctx, &rows, medicalRecordColumns, "medical_records", f, "visit_date DESC", page)
	if err != nil {
		return nil, 0, mapError(err, "list medical records", "medical record")
	}
	records, err := r.hydrate(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *medicalRecordRepository) CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM medical_records WHERE doctor_id = ? AND deleted_at IS NULL`, doctorID)
	return n, mapError(err, "count doctor medical records", "medical record")
}

func (r *medicalRecordRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM medical_records WHERE patient_id = ? AND deleted_at IS NULL`, patientID)
	return n, mapError(err, "count patient medical records", "medical record")
}

func (r *medicalRecordRepository) seal(notes string) ([]byte, error) {
	if notes == "" {
		return nil, nil
	}
	out, err := r.encryptor.Encrypt([]byte(notes))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt notes: %w", err)
	}
	return out, nil
}

func (r *medicalRecordRepository) open(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	out, err := r.encryptor.Decrypt(data)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt notes: %w", err)
	}
	return string(out), nil
}

func (r *medicalRecordRepository) saveChildren(ctx context.Context, rec *model.MedicalRecord) error {
	for i := range rec.VitalSigns {
		v := &rec.VitalSigns[i]
		_, err := r.namedExec(ctx, `
			INSERT INTO vital_signs (
				id, record_id, temperature_c, heart_rate, respiratory_rate, systolic, diastolic,
				oxygen_saturation, weight_kg, height_cm, recorded_at
			) VALUES (
				:id, :record_id, :temperature_c, :heart_rate, :respiratory_rate, :systolic, :diastolic,
				:oxygen_saturation, :weight_kg, :height_cm, :recorded_at
			)
		`, v)
		if err != nil {
			return mapError(err, "save vital signs", "vital signs")
		}
	}
	for i := range rec.Diagnoses {
		_, err := r.namedExec(ctx, `
			INSERT INTO diagnoses (id, record_id, code, description, is_primary)
			VALUES (:id, :record_id, :code, :description, :is_primary)
		`, &rec.Diagnoses[i])
		if err != nil {
			return mapError(err, "save diagnosis", "diagnosis")
		}
	}
	for i := range rec.Prescriptions {
		_, err := r.namedExec(ctx, `
			INSERT INTO prescriptions (
				id, record_id, medication, dosage, frequency, duration_days, instructions, prescribed_at
			) VALUES (
				:id, :record_id, :medication, :dosage, :frequency, :duration_days, :instructions, :prescribed_at
			)
		`, &rec.Prescriptions[i])
		if err != nil {
			return mapError(err, "save prescription", "prescription")
		}
	}
	return nil
}

// hydrate decrypts notes and loads child collections for all rows in three queries
func (r *medicalRecordRepository) hydrate(ctx context.Context, rows []*medicalRecordRow) ([]*model.MedicalRecord, error) {
	records := make([]*model.MedicalRecord, 0, len(rows))
	byID := make(map[uuid.UUID]*model.MedicalRecord, len(rows))
	ids := make(pq.StringArray, 0, len(rows))
	for _, row := range rows {
		rec := row.MedicalRecord
		notes, err := r.open(row.NotesEncrypted)
		if err != nil {
			return nil, err
		}
		rec.Notes = notes
		rec.VitalSigns = []model.VitalSigns{}
		rec.Diagnoses = []model.Diagnosis{}
		rec.Prescriptions = []model.Prescription{}
		records = append(records, &rec)
		byID[rec.ID] = &rec
		ids = append(ids, rec.ID.String())
	}
	if len(ids) == 0 {
		return records, nil
	}

	var vitals []model.VitalSigns
	if err := r.selectContext(ctx, &vitals, `
		SELECT id, record_id, temperature_c, heart_rate, respiratory_rate, systolic, diastolic,
			oxygen_saturation, weight_kg, height_cm, recorded_at
		FROM vital_signs WHERE record_id = ANY($1::uuid[]) ORDER BY recorded_at
	`, ids); err != nil {
		return nil, mapError(err, "load vital signs", "vital signs")
	}
	for _, v := range vitals {
		byID[v.RecordID].VitalSigns = append(byID[v.RecordID].VitalSigns, v)
	}

	var diagnoses []model.Diagnosis
	if err := r.selectContext(ctx, &diagnoses, `
		SELECT id, record_id, code, description, is_primary
		FROM diagnoses WHERE record_id = ANY($1::uuid[]) ORDER BY is_primary DESC, code
	`, ids); err != nil {
		return nil, mapError(err, "load diagnoses", "diagnosis")
	}
	for _, d := range diagnoses {
		byID[d.RecordID].Diagnoses = append(byID[d.RecordID].Diagnoses, d)
	}

	var prescriptions []model.Prescription
	if err := r.selectContext(ctx, &prescriptions, `
		SELECT id, record_id, medication, dosage, frequency, duration_days, instructions, prescribed_at
		FROM prescriptions WHERE record_id = ANY($1::uuid[]) ORDER BY prescribed_at
	`, ids); err != nil {
		return nil, mapError(err, "load prescriptions", "prescription")
	}
	for _, p := range prescriptions {
		byID[p.RecordID].Prescriptions = append(byID[p.RecordID].Prescriptions, p)
	}

	return records, nil
}
