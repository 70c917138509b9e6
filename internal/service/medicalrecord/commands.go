package medicalrecord

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service"
)

// CreateMedicalRecordCommand opens a visit record. A zero VisitDate means today.
type CreateMedicalRecordCommand struct {
	PatientID      uuid.UUID    `json:"patient_id" validate:"required"`
	DoctorID       uuid.UUID    `json:"doctor_id" validate:"required"`
	AppointmentID  *uuid.UUID   `json:"appointment_id"`
	VisitDate      service.Date `json:"visit_date"`
	ChiefComplaint string       `json:"chief_complaint" validate:"required,max=500"`
	Notes          string       `json:"notes" validate:"max=10000"`
}

type UpdateMedicalRecordNotesCommand struct {
	ID             uuid.UUID `json:"-" validate:"required"`
	ChiefComplaint string    `json:"chief_complaint" validate:"required,max=500"`
	Notes          string    `json:"notes" validate:"max=10000"`
}

type RecordVitalSignsCommand struct {
	RecordID         uuid.UUID `json:"-" validate:"required"`
	TemperatureC     *float64  `json:"temperature_c"`
	HeartRate        *int      `json:"heart_rate"`
	RespiratoryRate  *int      `json:"respiratory_rate"`
	Systolic         *int      `json:"systolic"`
	Diastolic        *int      `json:"diastolic"`
	OxygenSaturation *int      `json:"oxygen_saturation"`
	WeightKg         *float64  `json:"weight_kg"`
	HeightCm         *float64  `json:"height_cm"`
}

func (c RecordVitalSignsCommand) vitals() model.VitalSigns {
	return model.VitalSigns{
		TemperatureC:     c.TemperatureC,
		HeartRate:        c.HeartRate,
		RespiratoryRate:  c.RespiratoryRate,
		Systolic:         c.Systolic,
		Diastolic:        c.Diastolic,
		OxygenSaturation: c.OxygenSaturation,
		WeightKg:         c.WeightKg,
		HeightCm:         c.HeightCm,
	}
}

type AddDiagnosisCommand struct {
	RecordID    uuid.UUID `json:"-" validate:"required"`
	Code        string    `json:"code" validate:"required,max=10"`
	Description string    `json:"description" validate:"required,max=500"`
	Primary     bool      `json:"is_primary"`
}

type AddPrescriptionCommand struct {
	RecordID     uuid.UUID `json:"-" validate:"required"`
	Medication   string    `json:"medication" validate:"required,max=200"`
	Dosage       string    `json:"dosage" validate:"required,max=100"`
	Frequency    string    `json:"frequency" validate:"required,max=100"`
	DurationDays int       `json:"duration_days" validate:"required,gte=1,lte=365"`
	Instructions string    `json:"instructions" validate:"max=1000"`
}

type DeleteMedicalRecordCommand struct {
	ID uuid.UUID `validate:"required"`
}

type GetMedicalRecordQuery struct {
	ID uuid.UUID `validate:"required"`
}

type ListMedicalRecordsQuery struct {
	service.PageRequest
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}
