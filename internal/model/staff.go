package model

import (
	"errors"
	"time"
)

type StaffRole string

const (
	RoleAdmin        StaffRole = "admin"
	RoleReceptionist StaffRole = "receptionist"
	RoleNurse        StaffRole = "nurse"
	RoleBilling      StaffRole = "billing"
)

var ErrInvalidRole = errors.New("invalid staff role")

func (r StaffRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleReceptionist, RoleNurse, RoleBilling:
		return true
	}
	return false
}

type Staff struct {
	Base
	FullName
	Email        Email       `db:"email" json:"email"`
	Phone        PhoneNumber `db:"phone" json:"phone"`
	Role         StaffRole   `db:"role" json:"role"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Status       Status      `db:"status" json:"status"`
	LastLoginAt  *time.Time  `db:"last_login_at" json:"last_login_at,omitempty"`
}

func NewStaff(name FullName, email Email, phone PhoneNumber, role StaffRole, passwordHash string, now time.Time) (*Staff, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return &Staff{
		Base:         newBase(now),
		FullName:     name,
		Email:        email,
		Phone:        phone,
		Role:         role,
		PasswordHash: passwordHash,
		Status:       StatusActive,
	}, nil
}

func (s *Staff) UpdateName(name FullName, now time.Time) {
	s.FullName = name
	s.touch(now)
}

func (s *Staff) UpdateContactInformation(email Email, phone PhoneNumber, now time.Time) {
	s.Email = email
	s.Phone = phone
	s.touch(now)
}

func (s *Staff) ChangeRole(role StaffRole, now time.Time) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	s.Role = role
	s.touch(now)
	return nil
}

func (s *Staff) SetPasswordHash(hash string, now time.Time) {
	s.PasswordHash = hash
	s.touch(now)
}

func (s *Staff) RecordLogin(now time.Time) {
	s.LastLoginAt = &now
	s.touch(now)
}

func (s *Staff) Deactivate(now time.Time) error {
	if s.Status == StatusInactive {
		return ErrAlreadyInactive
	}
	s.Status = StatusInactive
	s.touch(now)
	return nil
}

func (s *Staff) Activate(now time.Time) error {
	if s.Status == StatusActive {
		return ErrAlreadyActive
	}
	s.Status = StatusActive
	s.touch(now)
	return nil
}

func (s *Staff) IsActive() bool {
	return s.Status == StatusActive && !s.IsDeleted()
}

type StaffFilters struct {
	Role   StaffRole
	Status Status
	Search string
}
