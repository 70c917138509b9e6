package model

import (
	"errors"
	"strings"
	"time"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

var bloodTypes = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

var (
	ErrDateOfBirthInFuture = errors.New("date of birth cannot be in the future")
	ErrInvalidSex          = errors.New("sex must be male or female")
	ErrInvalidBloodType    = errors.New("invalid blood type")
)

type Patient struct {
	Base
	FullName
	Address
	DateOfBirth           time.Time    `db:"date_of_birth" json:"date_of_birth"`
	Sex                   Sex          `db:"sex" json:"sex"`
	Email                 *Email       `db:"email" json:"email,omitempty"`
	Phone                 PhoneNumber  `db:"phone" json:"phone"`
	BloodType             string       `db:"blood_type" json:"blood_type,omitempty"`
	EmergencyContactName  string       `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *PhoneNumber `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	Status                Status       `db:"status" json:"status"`
}

// PatientDetails groups the demographic fields set at registration or update
type PatientDetails struct {
	Name        FullName
	DateOfBirth time.Time
	Sex         Sex
	BloodType   string
}

func NewPatient(details PatientDetails, phone PhoneNumber, email *Email, address Address, now time.Time) (*Patient, error) {
	p := &Patient{
		Base:    newBase(now),
		Phone:   phone,
		Email:   email,
		Address: address,
		Status:  StatusActive,
	}
	if err := p.setDetails(details, now); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Patient) setDetails(d PatientDetails, now time.Time) error {
	if d.DateOfBirth.After(now) {
		return ErrDateOfBirthInFuture
	}
	if d.Sex != SexMale && d.Sex != SexFemale {
		return ErrInvalidSex
	}
	bt := strings.ToUpper(strings.TrimSpace(d.BloodType))
	if bt != "" && !bloodTypes[bt] {
		return ErrInvalidBloodType
	}
	p.FullName = d.Name
	p.DateOfBirth = d.DateOfBirth
	p.Sex = d.Sex
	p.BloodType = bt
	return nil
}

func (p *Patient) UpdateDetails(d PatientDetails, now time.Time) error {
	if err := p.setDetails(d, now); err != nil {
		return err
	}
	p.touch(now)
	return nil
}

func (p *Patient) UpdateContactInformation(phone PhoneNumber, email *Email, address Address, now time.Time) {
	p.Phone = phone
	p.Email = email
	p.Address = address
	p.touch(now)
}

func (p *Patient) UpdateEmergencyContact(name string, phone *PhoneNumber, now time.Time) {
	p.EmergencyContactName = strings.TrimSpace(name)
	p.EmergencyContactPhone = phone
	p.touch(now)
}

func (p *Patient) Deactivate(now time.Time) error {
	if p.Status == StatusInactive {
		return ErrAlreadyInactive
	}
	p.Status = StatusInactive
	p.touch(now)
	return nil
}

func (p *Patient) Activate(now time.Time) error {
	if p.Status == StatusActive {
		return ErrAlreadyActive
	}
	p.Status = StatusActive
	p.touch(now)
	return nil
}

func (p *Patient) IsActive() bool {
	return p.Status == StatusActive && !p.IsDeleted()
}

// Age in whole years at the given instant
func (p *Patient) Age(now time.Time) int {
	years := now.Year() - p.DateOfBirth.Year()
	dob := p.DateOfBirth
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

type PatientFilters struct {
	Status Status
	Search string
}
