package staff

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type ProfileInput struct {
	service.NameInput
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

func (in ProfileInput) parse() (model.FullName, service.Contact, service.Fields) {
	var f service.Fields
	name, err := in.NameInput.Build()
	f.Check("name", err)
	contact := service.ParseContact(&f, in.Email, in.Phone)
	return name, contact, f
}

func (in ProfileInput) Rules() []apperrors.FieldError {
	_, _, f := in.parse()
	return f
}

type CreateStaffCommand struct {
	ProfileInput
	Role     model.StaffRole `json:"role" validate:"required,oneof=admin receptionist nurse billing"`
	Password string          `json:"password" validate:"required,min=8,max=72"`
}

type UpdateStaffCommand struct {
	ID uuid.UUID `json:"-" validate:"required"`
	ProfileInput
}

type ChangeStaffRoleCommand struct {
	ID   uuid.UUID       `json:"-" validate:"required"`
	Role model.StaffRole `json:"role" validate:"required,oneof=admin receptionist nurse billing"`
}

type ChangeStaffPasswordCommand struct {
	ID       uuid.UUID `json:"-" validate:"required"`
	Password string    `json:"password" validate:"required,min=8,max=72"`
}

type DeactivateStaffCommand struct {
	ID uuid.UUID `validate:"required"`
	// ActorID is the staff member performing the change
	ActorID uuid.UUID
}

type ActivateStaffCommand struct {
	ID uuid.UUID `validate:"required"`
}

type DeleteStaffCommand struct {
	ID      uuid.UUID `validate:"required"`
	ActorID uuid.UUID
}

type GetStaffQuery struct {
	ID uuid.UUID `validate:"required"`
}

type ListStaffQuery struct {
	service.PageRequest
	Role   model.StaffRole `form:"role" validate:"omitempty,oneof=admin receptionist nurse billing"`
	Status model.Status    `form:"status" validate:"omitempty,oneof=active inactive"`
	Search string          `form:"search" validate:"max=100"`
}
