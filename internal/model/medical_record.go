package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var icd10Pattern = regexp.MustCompile(`^[A-TV-Z][0-9][0-9A-Z](\.[0-9A-Z]{1,4})?$`)

var (
	ErrInvalidDiagnosisCode = errors.New("diagnosis code must be ICD-10 formatted")
	ErrDuplicatePrimary     = errors.New("record already has a primary diagnosis")
	ErrMedicationRequired   = errors.New("medication and dosage are required")
	ErrInvalidDuration      = errors.New("duration must be at least one day")
	ErrVisitDateInFuture    = errors.New("visit date cannot be in the future")
)

type MedicalRecord struct {
	Base
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID       uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	AppointmentID  *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	VisitDate      time.Time  `db:"visit_date" json:"visit_date"`
	ChiefComplaint string     `db:"chief_complaint" json:"chief_complaint"`
	Notes          string     `db:"notes" json:"notes,omitempty"`

	VitalSigns    []VitalSigns   `db:"-" json:"vital_signs"`
	Diagnoses     []Diagnosis    `db:"-" json:"diagnoses"`
	Prescriptions []Prescription `db:"-" json:"prescriptions"`
}

type VitalSigns struct {
	ID               uuid.UUID `db:"id" json:"id"`
	RecordID         uuid.UUID `db:"record_id" json:"record_id"`
	TemperatureC     *float64  `db:"temperature_c" json:"temperature_c,omitempty"`
	HeartRate        *int      `db:"heart_rate" json:"heart_rate,omitempty"`
	RespiratoryRate  *int      `db:"respiratory_rate" json:"respiratory_rate,omitempty"`
	Systolic         *int      `db:"systolic" json:"systolic,omitempty"`
	Diastolic        *int      `db:"diastolic" json:"diastolic,omitempty"`
	OxygenSaturation *int      `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`
	WeightKg         *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
	HeightCm         *float64  `db:"height_cm" json:"height_cm,omitempty"`
	RecordedAt       time.Time `db:"recorded_at" json:"recorded_at"`
}

// Validate checks each present measurement against physiological bounds
func (v VitalSigns) Validate() error {
	var problems []string
	if v.TemperatureC != nil && (*v.TemperatureC < 30 || *v.TemperatureC > 45) {
		problems = append(problems, "temperature must be between 30 and 45 C")
	}
	if v.HeartRate != nil && (*v.HeartRate < 20 || *v.HeartRate > 250) {
		problems = append(problems, "heart rate must be between 20 and 250 bpm")
	}
	if v.RespiratoryRate != nil && (*v.RespiratoryRate < 5 || *v.RespiratoryRate > 60) {
		problems = append(problems, "respiratory rate must be between 5 and 60")
	}
	if (v.Systolic == nil) != (v.Diastolic == nil) {
		problems = append(problems, "blood pressure needs both systolic and diastolic")
	} else if v.Systolic != nil && *v.Systolic <= *v.Diastolic {
		problems = append(problems, "systolic must be greater than diastolic")
	}
	if v.OxygenSaturation != nil && (*v.OxygenSaturation < 50 || *v.OxygenSaturation > 100) {
		problems = append(problems, "oxygen saturation must be between 50 and 100")
	}
	if v.WeightKg != nil && *v.WeightKg <= 0 {
		problems = append(problems, "weight must be positive")
	}
	if v.HeightCm != nil && *v.HeightCm <= 0 {
		problems = append(problems, "height must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid vital signs: %s", strings.Join(problems, "; "))
	}
	return nil
}

type Diagnosis struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RecordID    uuid.UUID `db:"record_id" json:"record_id"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	IsPrimary   bool      `db:"is_primary" json:"is_primary"`
}

type Prescription struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RecordID     uuid.UUID `db:"record_id" json:"record_id"`
	Medication   string    `db:"medication" json:"medication"`
	Dosage       string    `db:"dosage" json:"dosage"`
	Frequency    string    `db:"frequency" json:"frequency"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	Instructions string    `db:"instructions" json:"instructions,omitempty"`
	PrescribedAt time.Time `db:"prescribed_at" json:"prescribed_at"`
}

func NewMedicalRecord(patientID, doctorID uuid.UUID, appointmentID *uuid.UUID, visitDate time.Time, chiefComplaint, notes string, now time.Time) (*MedicalRecord, error) {
	if visitDate.After(now) {
		return nil, ErrVisitDateInFuture
	}
	return &MedicalRecord{
		Base:           newBase(now),
		PatientID:      patientID,
		DoctorID:       doctorID,
		AppointmentID:  appointmentID,
		VisitDate:      visitDate,
		ChiefComplaint: strings.TrimSpace(chiefComplaint),
		Notes:          strings.TrimSpace(notes),
		VitalSigns:     []VitalSigns{},
		Diagnoses:      []Diagnosis{},
		Prescriptions:  []Prescription{},
	}, nil
}

func (r *MedicalRecord) UpdateNotes(chiefComplaint, notes string, now time.Time) {
	r.ChiefComplaint = strings.TrimSpace(chiefComplaint)
	r.Notes = strings.TrimSpace(notes)
	r.touch(now)
}

func (r *MedicalRecord) RecordVitalSigns(v VitalSigns, now time.Time) (*VitalSigns, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	v.ID = uuid.New()
	v.RecordID = r.ID
	if v.RecordedAt.IsZero() {
		v.RecordedAt = now
	}
	r.VitalSigns = append(r.VitalSigns, v)
	r.touch(now)
	return &r.VitalSigns[len(r.VitalSigns)-1], nil
}

func (r *MedicalRecord) AddDiagnosis(code, description string, primary bool, now time.Time) (*Diagnosis, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !icd10Pattern.MatchString(code) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDiagnosisCode, code)
	}
	if primary && r.PrimaryDiagnosis() != nil {
		return nil, ErrDuplicatePrimary
	}
	r.Diagnoses = append(r.Diagnoses, Diagnosis{
		ID:          uuid.New(),
		RecordID:    r.ID,
		Code:        code,
		Description: strings.TrimSpace(description),
		IsPrimary:   primary,
	})
	r.touch(now)
	return &r.Diagnoses[len(r.Diagnoses)-1], nil
}

func (r *MedicalRecord) PrimaryDiagnosis() *Diagnosis {
	for i := range r.Diagnoses {
		if r.Diagnoses[i].IsPrimary {
			return &r.Diagnoses[i]
		}
	}
	return nil
}

func (r *MedicalRecord) AddPrescription(medication, dosage, frequency string, durationDays int, instructions string, now time.Time) (*Prescription, error) {
	medication, dosage = strings.TrimSpace(medication), strings.TrimSpace(dosage)
	if medication == "" || dosage == "" {
		return nil, ErrMedicationRequired
	}
	if durationDays < 1 {
		return nil, ErrInvalidDuration
	}
	r.Prescriptions = append(r.Prescriptions, Prescription{
		ID:           uuid.New(),
		RecordID:     r.ID,
		Medication:   medication,
		Dosage:       dosage,
		Frequency:    strings.TrimSpace(frequency),
		DurationDays: durationDays,
		Instructions: strings.TrimSpace(instructions),
		PrescribedAt: now,
	})
	r.touch(now)
	return &r.Prescriptions[len(r.Prescriptions)-1], nil
}

type MedicalRecordFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}
