package patient

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type ContactInput struct {
	Email                 string               `json:"email" validate:"omitempty,email"`
	Phone                 string               `json:"phone" validate:"required"`
	Address               service.AddressInput `json:"address"`
	EmergencyContactName  string               `json:"emergency_contact_name" validate:"max=200"`
	EmergencyContactPhone string               `json:"emergency_contact_phone"`
}

type parsedContact struct {
	email            *model.Email
	phone            model.PhoneNumber
	address          model.Address
	emergencyContact *model.PhoneNumber
}

func (in ContactInput) parse(f *service.Fields) parsedContact {
	var p parsedContact
	var err error

	if in.Email != "" {
		var e model.Email
		e, err = model.NewEmail(in.Email)
		f.Check("email", err)
		p.email = &e
	}
	p.phone, err = model.NewPhoneNumber(in.Phone)
	f.Check("phone", err)
	p.address, err = in.Address.Build()
	f.Check("address", err)
	if in.EmergencyContactPhone != "" {
		var ec model.PhoneNumber
		ec, err = model.NewPhoneNumber(in.EmergencyContactPhone)
		f.Check("emergency_contact_phone", err)
		p.emergencyContact = &ec
	}
	return p
}

func (in ContactInput) Rules() []apperrors.FieldError {
	var f service.Fields
	in.parse(&f)
	return f
}

// PatientInput is the writable part of a patient
type PatientInput struct {
	service.NameInput
	DateOfBirth service.Date `json:"date_of_birth" validate:"required"`
	Sex         model.Sex    `json:"sex" validate:"required,oneof=male female"`
	BloodType   string       `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	ContactInput
}

type parsedPatient struct {
	details model.PatientDetails
	contact parsedContact
}

func (in PatientInput) parse() (parsedPatient, service.Fields) {
	var f service.Fields
	name, err := in.NameInput.Build()
	f.Check("name", err)
	return parsedPatient{
		details: model.PatientDetails{
			Name:        name,
			DateOfBirth: in.DateOfBirth.Time,
			Sex:         in.Sex,
			BloodType:   in.BloodType,
		},
		contact: in.ContactInput.parse(&f),
	}, f
}

// Rules shadows the promoted ContactInput rules so contact fields are reported once
func (in PatientInput) Rules() []apperrors.FieldError {
	_, f := in.parse()
	return f
}

type RegisterPatientCommand struct {
	PatientInput
}

type UpdatePatientCommand struct {
	ID uuid.UUID `json:"-" validate:"required"`
	PatientInput
}

type UpsertPatientCommand struct {
	ID uuid.UUID `json:"-" validate:"required"`
	PatientInput
}

type UpdatePatientContactCommand struct {
	ID uuid.UUID `json:"-" validate:"required"`
	ContactInput
}

type DeactivatePatientCommand struct {
	ID uuid.UUID `validate:"required"`
}

type ActivatePatientCommand struct {
	ID uuid.UUID `validate:"required"`
}

type DeletePatientCommand struct {
	ID uuid.UUID `validate:"required"`
}

type GetPatientQuery struct {
	ID uuid.UUID `validate:"required"`
}

type ListPatientsQuery struct {
	service.PageRequest
	Status model.Status `form:"status" validate:"omitempty,oneof=active inactive"`
	Search string       `form:"search" validate:"max=100"`
}
