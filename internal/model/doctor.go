package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrSpecializationRequired = errors.New("specialization is required")
	ErrLicenseRequired        = errors.New("license number is required")
	ErrNegativeFee            = errors.New("consultation fee cannot be negative")
)

type Doctor struct {
	Base
	FullName
	Specialization  string      `db:"specialization" json:"specialization"`
	LicenseNumber   string      `db:"license_number" json:"license_number"`
	Email           Email       `db:"email" json:"email"`
	Phone           PhoneNumber `db:"phone" json:"phone"`
	ConsultationFee Money       `db:"consultation_fee" json:"consultation_fee"`
	Status          Status      `db:"status" json:"status"`
}

func NewDoctor(name FullName, specialization, licenseNumber string, email Email, phone PhoneNumber, fee Money, now time.Time) (*Doctor, error) {
	d := &Doctor{
		Base:     newBase(now),
		FullName: name,
		Email:    email,
		Phone:    phone,
		Status:   StatusActive,
	}
	if err := d.setProfile(specialization, licenseNumber, fee); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Doctor) setProfile(specialization, licenseNumber string, fee Money) error {
	specialization = strings.TrimSpace(specialization)
	licenseNumber = strings.TrimSpace(licenseNumber)
	if specialization == "" {
		return ErrSpecializationRequired
	}
	if licenseNumber == "" {
		return ErrLicenseRequired
	}
	if fee < 0 {
		return ErrNegativeFee
	}
	d.Specialization = specialization
	d.LicenseNumber = licenseNumber
	d.ConsultationFee = fee
	return nil
}

// UpdateProfile replaces the name and professional details
func (d *Doctor) UpdateProfile(name FullName, specialization, licenseNumber string, fee Money, now time.Time) error {
	if err := d.setProfile(specialization, licenseNumber, fee); err != nil {
		return err
	}
	d.FullName = name
	d.touch(now)
	return nil
}

func (d *Doctor) UpdateContactInformation(email Email, phone PhoneNumber, now time.Time) {
	d.Email = email
	d.Phone = phone
	d.touch(now)
}

func (d *Doctor) Deactivate(now time.Time) error {
	if d.Status == StatusInactive {
		return ErrAlreadyInactive
	}
	d.Status = StatusInactive
	d.touch(now)
	return nil
}

func (d *Doctor) Activate(now time.Time) error {
	if d.Status == StatusActive {
		return ErrAlreadyActive
	}
	d.Status = StatusActive
	d.touch(now)
	return nil
}

func (d *Doctor) IsActive() bool {
	return d.Status == StatusActive && !d.IsDeleted()
}

type DoctorFilters struct {
	Specialization string
	Status         Status
	Search         string
}
