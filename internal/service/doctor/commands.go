package doctor

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// DoctorInput is the writable part of a doctor
type DoctorInput struct {
	service.NameInput
	Specialization  string      `json:"specialization" validate:"required,max=100"`
	LicenseNumber   string      `json:"license_number" validate:"required,max=50"`
	Email           string      `json:"email" validate:"required,email"`
	Phone           string      `json:"phone" validate:"required"`
	ConsultationFee model.Money `json:"consultation_fee" validate:"gte=0"`
}

func (in DoctorInput) Rules() []apperrors.FieldError {
	_, fields := in.parse()
	return fields
}

type parsedDoctor struct {
	name    model.FullName
	contact service.Contact
}

func (in DoctorInput) parse() (parsedDoctor, service.Fields) {
	var f service.Fields
	var p parsedDoctor
	var err error
	p.name, err = in.NameInput.Build()
	f.Check("name", err)
	p.contact = service.ParseContact(&f, in.Email, in.Phone)
	return p, f
}

type CreateDoctorCommand struct {
	DoctorInput
}

type UpdateDoctorCommand struct {
	ID uuid.UUID `json:"-" validate:"required"`
	DoctorInput
}

// UpsertDoctorCommand creates the doctor with ID when it does not exist
type UpsertDoctorCommand struct {
	ID uuid.UUID `json:"-" validate:"required"`
	DoctorInput
}

type DeactivateDoctorCommand struct {
	ID uuid.UUID `validate:"required"`
}

type ActivateDoctorCommand struct {
	ID uuid.UUID `validate:"required"`
}

type DeleteDoctorCommand struct {
	ID uuid.UUID `validate:"required"`
}

type GetDoctorQuery struct {
	ID uuid.UUID `validate:"required"`
}

type ListDoctorsQuery struct {
	service.PageRequest
	Specialization string       `form:"specialization"`
	Status         model.Status `form:"status" validate:"omitempty,oneof=active inactive"`
	Search         string       `form:"search" validate:"max=100"`
}
