package billing

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service"
)

type ItemInput struct {
	Description string      `json:"description" validate:"required,max=255"`
	Quantity    int         `json:"quantity" validate:"required,gte=1,lte=10000"`
	UnitPrice   model.Money `json:"unit_price" validate:"gte=0,lte=1000000000000"`
}

type CreateBillCommand struct {
	PatientID     uuid.UUID    `json:"patient_id" validate:"required"`
	AppointmentID *uuid.UUID   `json:"appointment_id"`
	DueDate       service.Date `json:"due_date"`
	Items         []ItemInput  `json:"items" validate:"dive"`
}

type AddBillItemCommand struct {
	BillID uuid.UUID `json:"-" validate:"required"`
	ItemInput
}

type RemoveBillItemCommand struct {
	BillID uuid.UUID `validate:"required"`
	ItemID uuid.UUID `validate:"required"`
}

type ApplyDiscountCommand struct {
	BillID uuid.UUID   `json:"-" validate:"required"`
	Amount model.Money `json:"amount" validate:"gte=0"`
}

type IssueBillCommand struct {
	BillID uuid.UUID `validate:"required"`
}

type RecordPaymentCommand struct {
	BillID    uuid.UUID           `json:"-" validate:"required"`
	Amount    model.Money         `json:"amount" validate:"gt=0"`
	Method    model.PaymentMethod `json:"method" validate:"required,oneof=cash card gcash bank_transfer insurance"`
	Reference string              `json:"reference" validate:"max=100"`
}

type SubmitClaimCommand struct {
	BillID       uuid.UUID   `json:"-" validate:"required"`
	Provider     string      `json:"provider" validate:"required,max=100"`
	PolicyNumber string      `json:"policy_number" validate:"required,max=50"`
	Amount       model.Money `json:"amount" validate:"gt=0"`
}

// ApproveClaimCommand settles ApprovedAmount as an insurance payment
type ApproveClaimCommand struct {
	BillID         uuid.UUID   `json:"-" validate:"required"`
	ClaimID        uuid.UUID   `json:"-" validate:"required"`
	ApprovedAmount model.Money `json:"approved_amount" validate:"gt=0"`
}

type RejectClaimCommand struct {
	BillID  uuid.UUID `json:"-" validate:"required"`
	ClaimID uuid.UUID `json:"-" validate:"required"`
	Reason  string    `json:"reason" validate:"required,max=500"`
}

type CancelBillCommand struct {
	BillID uuid.UUID `validate:"required"`
}

type DeleteBillCommand struct {
	ID uuid.UUID `validate:"required"`
}

type GetBillQuery struct {
	ID uuid.UUID `validate:"required"`
}

type ListBillsQuery struct {
	service.PageRequest
	PatientID uuid.UUID        `json:"patient_id"`
	Status    model.BillStatus `json:"status" validate:"omitempty,oneof=draft issued partially_paid paid cancelled"`
}
