package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// Page wraps one page of list results
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPage maps entities with fn and computes the page count
func NewPage[E any, T any](entities []E, p model.Pagination, total int64, fn func(E) T) Page[T] {
	p = p.Normalize()
	items := make([]T, 0, len(entities))
	for _, e := range entities {
		items = append(items, fn(e))
	}
	return Page[T]{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: int((total + int64(p.PageSize) - 1) / int64(p.PageSize)),
	}
}

type NameDTO struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
	Suffix     string `json:"suffix,omitempty"`
}

func toName(n model.FullName) NameDTO {
	return NameDTO{FirstName: n.FirstName, MiddleName: n.MiddleName, LastName: n.LastName, Suffix: n.Suffix}
}

type AddressDTO struct {
	Street   string `json:"street"`
	Barangay string `json:"barangay"`
	City     string `json:"city"`
	Province string `json:"province"`
	ZipCode  string `json:"zip_code,omitempty"`
	Line     string `json:"line"`
}

func toAddress(a model.Address) AddressDTO {
	return AddressDTO{
		Street:   a.Street,
		Barangay: a.Barangay,
		City:     a.City,
		Province: a.Province,
		ZipCode:  a.ZipCode,
		Line:     a.Line(),
	}
}

type DoctorDTO struct {
	ID              uuid.UUID   `json:"id"`
	Name            NameDTO     `json:"name"`
	DisplayName     string      `json:"display_name"`
	Specialization  string      `json:"specialization"`
	LicenseNumber   string      `json:"license_number"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	ConsultationFee model.Money `json:"consultation_fee"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func Doctor(d *model.Doctor) DoctorDTO {
	return DoctorDTO{
		ID:              d.ID,
		Name:            toName(d.FullName),
		DisplayName:     "Dr. " + d.Display(),
		Specialization:  d.Specialization,
		LicenseNumber:   d.LicenseNumber,
		Email:           d.Email.String(),
		Phone:           d.Phone.String(),
		ConsultationFee: d.ConsultationFee,
		Status:          string(d.Status),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type PatientDTO struct {
	ID                    uuid.UUID  `json:"id"`
	Name                  NameDTO    `json:"name"`
	DisplayName           string     `json:"display_name"`
	DateOfBirth           time.Time  `json:"date_of_birth"`
	Age                   int        `json:"age"`
	Sex                   string     `json:"sex"`
	BloodType             string     `json:"blood_type,omitempty"`
	Email                 string     `json:"email,omitempty"`
	Phone                 string     `json:"phone"`
	Address               AddressDTO `json:"address"`
	EmergencyContactName  string     `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string     `json:"emergency_contact_phone,omitempty"`
	Status                string     `json:"status"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Patient maps a patient; Age is computed at now
func Patient(p *model.Patient, now time.Time) PatientDTO {
	out := PatientDTO{
		ID:                   p.ID,
		Name:                 toName(p.FullName),
		DisplayName:          p.Display(),
		DateOfBirth:          p.DateOfBirth,
		Age:                  p.Age(now),
		Sex:                  string(p.Sex),
		BloodType:            p.BloodType,
		Phone:                p.Phone.String(),
		Address:              toAddress(p.Address),
		EmergencyContactName: p.EmergencyContactName,
		Status:               string(p.Status),
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
	if p.Email != nil {
		out.Email = p.Email.String()
	}
	if p.EmergencyContactPhone != nil {
		out.EmergencyContactPhone = p.EmergencyContactPhone.String()
	}
	return out
}

type StaffDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        NameDTO    `json:"name"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func Staff(s *model.Staff) StaffDTO {
	return StaffDTO{
		ID:          s.ID,
		Name:        toName(s.FullName),
		DisplayName: s.Display(),
		Email:       s.Email.String(),
		Phone:       s.Phone.String(),
		Role:        string(s.Role),
		Status:      string(s.Status),
		LastLoginAt: s.LastLoginAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type AppointmentDTO struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	CancelReason    string    `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func Appointment(a *model.Appointment) AppointmentDTO {
	out := AppointmentDTO{
		ID:              a.ID,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		DurationMinutes: int(a.Duration().Minutes()),
		Reason:          a.Reason,
		Notes:           a.Notes,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.CancelReason != nil {
		out.CancelReason = *a.CancelReason
	}
	return out
}

type AvailabilityDTO struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

type BillItemDTO struct {
	ID          uuid.UUID   `json:"id"`
	Description string      `json:"description"`
	Quantity    int         `json:"quantity"`
	UnitPrice   model.Money `json:"unit_price"`
	Amount      model.Money `json:"amount"`
}

type PaymentDTO struct {
	ID        uuid.UUID   `json:"id"`
	Amount    model.Money `json:"amount"`
	Method    string      `json:"method"`
	Reference string      `json:"reference,omitempty"`
	PaidAt    time.Time   `json:"paid_at"`
}

type ClaimDTO struct {
	ID             uuid.UUID   `json:"id"`
	Provider       string      `json:"provider"`
	PolicyNumber   string      `json:"policy_number"`
	ClaimedAmount  model.Money `json:"claimed_amount"`
	ApprovedAmount model.Money `json:"approved_amount"`
	Status         string      `json:"status"`
	Remarks        string      `json:"remarks,omitempty"`
	SubmittedAt    time.Time   `json:"submitted_at"`
	ResolvedAt     *time.Time  `json:"resolved_at,omitempty"`
}

type BillDTO struct {
	ID            uuid.UUID     `json:"id"`
	BillNumber    string        `json:"bill_number"`
	PatientID     uuid.UUID     `json:"patient_id"`
	AppointmentID *uuid.UUID    `json:"appointment_id,omitempty"`
	Status        string        `json:"status"`
	Items         []BillItemDTO `json:"items"`
	Payments      []PaymentDTO  `json:"payments"`
	Claims        []ClaimDTO    `json:"claims"`
	Subtotal      model.Money   `json:"subtotal"`
	Discount      model.Money   `json:"discount"`
	Total         model.Money   `json:"total"`
	AmountPaid    model.Money   `json:"amount_paid"`
	Balance       model.Money   `json:"balance"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	IssuedAt      *time.Time    `json:"issued_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func Bill(b *model.Bill) BillDTO {
	out := BillDTO{
		ID:            b.ID,
		BillNumber:    b.BillNumber,
		PatientID:     b.PatientID,
		AppointmentID: b.AppointmentID,
		Status:        string(b.Status),
		Items:         make([]BillItemDTO, 0, len(b.Items)),
		Payments:      make([]PaymentDTO, 0, len(b.Payments)),
		Claims:        make([]ClaimDTO, 0, len(b.Claims)),
		Subtotal:      b.Subtotal(),
		Discount:      b.Discount,
		Total:         b.Total(),
		AmountPaid:    b.AmountPaid(),
		Balance:       b.Balance(),
		DueDate:       b.DueDate,
		IssuedAt:      b.IssuedAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for _, i := range b.Items {
		out.Items = append(out.Items, BillItemDTO{
			ID:          i.ID,
			Description: i.Description,
			Quantity:    i.Quantity,
			UnitPrice:   i.UnitPrice,
			Amount:      i.Amount(),
		})
	}
	for _, p := range b.Payments {
		out.Payments = append(out.Payments, PaymentDTO{
			ID:        p.ID,
			Amount:    p.Amount,
			Method:    string(p.Method),
			Reference: p.Reference,
			PaidAt:    p.PaidAt,
		})
	}
	for _, c := range b.Claims {
		out.Claims = append(out.Claims, ClaimDTO{
			ID:             c.ID,
			Provider:       c.Provider,
			PolicyNumber:   c.PolicyNumber,
			ClaimedAmount:  c.ClaimedAmount,
			ApprovedAmount: c.ApprovedAmount,
			Status:         string(c.Status),
			Remarks:        c.Remarks,
			SubmittedAt:    c.SubmittedAt,
			ResolvedAt:     c.ResolvedAt,
		})
	}
	return out
}

type VitalSignsDTO struct {
	ID               uuid.UUID `json:"id"`
	TemperatureC     *float64  `json:"temperature_c,omitempty"`
	HeartRate        *int      `json:"heart_rate,omitempty"`
	RespiratoryRate  *int      `json:"respiratory_rate,omitempty"`
	Systolic         *int      `json:"systolic,omitempty"`
	Diastolic        *int      `json:"diastolic,omitempty"`
	OxygenSaturation *int      `json:"oxygen_saturation,omitempty"`
	WeightKg         *float64  `json:"weight_kg,omitempty"`
	HeightCm         *float64  `json:"height_cm,omitempty"`
	RecordedAt       time.Time `json:"recorded_at"`
}

type DiagnosisDTO struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	IsPrimary   bool      `json:"is_primary"`
}

type PrescriptionDTO struct {
	ID           uuid.UUID `json:"id"`
	Medication   string    `json:"medication"`
	Dosage       string    `json:"dosage"`
	Frequency    string    `json:"frequency"`
	DurationDays int       `json:"duration_days"`
	Instructions string    `json:"instructions,omitempty"`
	PrescribedAt time.Time `json:"prescribed_at"`
}

type MedicalRecordDTO struct {
	ID             uuid.UUID         `json:"id"`
	PatientID      uuid.UUID         `json:"patient_id"`
	DoctorID       uuid.UUID         `json:"doctor_id"`
	AppointmentID  *uuid.UUID        `json:"appointment_id,omitempty"`
	VisitDate      time.Time         `json:"visit_date"`
	ChiefComplaint string            `json:"chief_complaint"`
	Notes          string            `json:"notes,omitempty"`
	VitalSigns     []VitalSignsDTO   `json:"vital_signs"`
	Diagnoses      []DiagnosisDTO    `json:"diagnoses"`
	Prescriptions  []PrescriptionDTO `json:"prescriptions"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func MedicalRecord(r *model.MedicalRecord) MedicalRecordDTO {
	out := MedicalRecordDTO{
		ID:             r.ID,
		PatientID:      r.PatientID,
		DoctorID:       r.DoctorID,
		AppointmentID:  r.AppointmentID,
		VisitDate:      r.VisitDate,
		ChiefComplaint: r.ChiefComplaint,
		Notes:          r.Notes,
		VitalSigns:     make([]VitalSignsDTO, 0, len(r.VitalSigns)),
		Diagnoses:      make([]DiagnosisDTO, 0, len(r.Diagnoses)),
		Prescriptions:  make([]PrescriptionDTO, 0, len(r.Prescriptions)),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	for _, v := range r.VitalSigns {
		out.VitalSigns = append(out.VitalSigns, VitalSignsDTO{
			ID:               v.ID,
			TemperatureC:     v.TemperatureC,
			HeartRate:        v.HeartRate,
			RespiratoryRate:  v.RespiratoryRate,
			Systolic:         v.Systolic,
			Diastolic:        v.Diastolic,
			OxygenSaturation: v.OxygenSaturation,
			WeightKg:         v.WeightKg,
			HeightCm:         v.HeightCm,
			RecordedAt:       v.RecordedAt,
		})
	}
	for _, d := range r.Diagnoses {
		out.Diagnoses = append(out.Diagnoses, DiagnosisDTO{
			ID:          d.ID,
			Code:        d.Code,
			Description: d.Description,
			IsPrimary:   d.IsPrimary,
		})
	}
	for _, p := range r.Prescriptions {
		out.Prescriptions = append(out.Prescriptions, PrescriptionDTO{
			ID:           p.ID,
			Medication:   p.Medication,
			Dosage:       p.Dosage,
			Frequency:    p.Frequency,
			DurationDays: p.DurationDays,
			Instructions: p.Instructions,
			PrescribedAt: p.PrescribedAt,
		})
	}
	return out
}
