package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BillStatus string

const (
	BillStatusDraft         BillStatus = "draft"
	BillStatusIssued        BillStatus = "issued"
	BillStatusPartiallyPaid BillStatus = "partially_paid"
	BillStatusPaid          BillStatus = "paid"
	BillStatusCancelled     BillStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodGCash        PaymentMethod = "gcash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodInsurance    PaymentMethod = "insurance"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodGCash, PaymentMethodBankTransfer, PaymentMethodInsurance:
		return true
	}
	return false
}

type ClaimStatus string

const (
	ClaimStatusSubmitted ClaimStatus = "submitted"
	ClaimStatusApproved  ClaimStatus = "approved"
	ClaimStatusRejected  ClaimStatus = "rejected"
)

var (
	ErrBillNotDraft          = errors.New("bill is no longer a draft")
	ErrBillNotPayable        = errors.New("bill is not open for payment")
	ErrBillHasNoItems        = errors.New("bill has no items")
	ErrBillHasPayments       = errors.New("bill already has payments")
	ErrBillCancelled         = errors.New("bill is cancelled")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrNegativeAmount        = errors.New("amount cannot be negative")
	ErrNonPositiveAmount     = errors.New("amount must be greater than zero")
	ErrDiscountExceedsTotal  = errors.New("discount cannot exceed subtotal")
	ErrPaymentExceedsBalance = errors.New("amount exceeds outstanding balance")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrItemNotFound          = errors.New("bill item not found")
	ErrClaimNotFound         = errors.New("claim not found")
	ErrClaimNotPending       = errors.New("claim is not pending")
	ErrDescriptionRequired   = errors.New("description is required")
	ErrAmountTooLarge        = errors.New("amount is too large")
)

type Bill struct {
	Base
	BillNumber    string     `db:"bill_number" json:"bill_number"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Status        BillStatus `db:"status" json:"status"`
	Discount      Money      `db:"discount" json:"discount"`
	DueDate       *time.Time `db:"due_date" json:"due_date,omitempty"`
	IssuedAt      *time.Time `db:"issued_at" json:"issued_at,omitempty"`

	Items    []BillItem       `db:"-" json:"items"`
	Payments []Payment        `db:"-" json:"payments"`
	Claims   []InsuranceClaim `db:"-" json:"claims"`
}

type BillItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BillID      uuid.UUID `db:"bill_id" json:"bill_id"`
	Description string    `db:"description" json:"description"`
	Quantity    int       `db:"quantity" json:"quantity"`
	UnitPrice   Money     `db:"unit_price" json:"unit_price"`
}

func (i BillItem) Amount() Money {
	return Money(i.Quantity) * i.UnitPrice
}

type Payment struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	BillID    uuid.UUID     `db:"bill_id" json:"bill_id"`
	Amount    Money         `db:"amount" json:"amount"`
	Method    PaymentMethod `db:"method" json:"method"`
	Reference string        `db:"reference" json:"reference,omitempty"`
	PaidAt    time.Time     `db:"paid_at" json:"paid_at"`
}

type InsuranceClaim struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	BillID         uuid.UUID   `db:"bill_id" json:"bill_id"`
	Provider       string      `db:"provider" json:"provider"`
	PolicyNumber   string      `db:"policy_number" json:"policy_number"`
	ClaimedAmount  Money       `db:"claimed_amount" json:"claimed_amount"`
	ApprovedAmount Money       `db:"approved_amount" json:"approved_amount"`
	Status         ClaimStatus `db:"status" json:"status"`
	Remarks        string      `db:"remarks" json:"remarks,omitempty"`
	SubmittedAt    time.Time   `db:"submitted_at" json:"submitted_at"`
	ResolvedAt     *time.Time  `db:"resolved_at" json:"resolved_at,omitempty"`
}

func NewBill(patientID uuid.UUID, appointmentID *uuid.UUID, dueDate *time.Time, now time.Time) *Bill {
	b := &Bill{
		Base:          newBase(now),
		PatientID:     patientID,
		AppointmentID: appointmentID,
		Status:        BillStatusDraft,
		DueDate:       dueDate,
		Items:         []BillItem{},
		Payments:      []Payment{},
		Claims:        []InsuranceClaim{},
	}
	b.BillNumber = fmt.Sprintf("BILL-%s-%s", now.Format("20060102"), strings.ToUpper(b.ID.String()[:8]))
	return b
}

func (b *Bill) Subtotal() Money {
	var total Money
	for _, item := range b.Items {
		total += item.Amount()
	}
	return total
}

func (b *Bill) Total() Money {
	return b.Subtotal() - b.Discount
}

func (b *Bill) AmountPaid() Money {
	var paid Money
	for _, p := range b.Payments {
		paid += p.Amount
	}
	return paid
}

func (b *Bill) Balance() Money {
	return b.Total() - b.AmountPaid()
}

func (b *Bill) AddItem(description string, quantity int, unitPrice Money, now time.Time) (*BillItem, error) {
	if b.Status != BillStatusDraft {
		return nil, ErrBillNotDraft
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if unitPrice < 0 {
		return nil, ErrNegativeAmount
	}
	amount, ok := mulMoney(unitPrice, int64(quantity))
	if !ok {
		return nil, ErrAmountTooLarge
	}
	if _, ok := addMoney(b.Subtotal(), amount); !ok {
		return nil, ErrAmountTooLarge
	}
	b.Items = append(b.Items, BillItem{
		ID:          uuid.New(),
		BillID:      b.ID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	})
	b.touch(now)
	return &b.Items[len(b.Items)-1], nil
}

func (b *Bill) RemoveItem(itemID uuid.UUID, now time.Time) error {
	if b.Status != BillStatusDraft {
		return ErrBillNotDraft
	}
	idx := -1
	for i, item := range b.Items {
		if item.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrItemNotFound
	}
	if b.Subtotal()-b.Items[idx].Amount() < b.Discount {
		return ErrDiscountExceedsTotal
	}
	b.Items = append(b.Items[:idx:idx], b.Items[idx+1:]...)
	b.touch(now)
	return nil
}

// ApplyDiscount sets the discount. On any error the bill is left untouched.
func (b *Bill) ApplyDiscount(amount Money, now time.Time) error {
	if b.Status != BillStatusDraft && b.Status != BillStatusIssued {
		return ErrBillNotDraft
	}
	if b.Status == BillStatusIssued && len(b.Payments) > 0 {
		return ErrBillHasPayments
	}
	if amount < 0 {
		return ErrNegativeAmount
	}
	if amount > b.Subtotal() {
		return ErrDiscountExceedsTotal
	}
	b.Discount = amount
	b.touch(now)
	return nil
}

func (b *Bill) Issue(now time.Time) error {
	if b.Status != BillStatusDraft {
		return ErrBillNotDraft
	}
	if len(b.Items) == 0 {
		return ErrBillHasNoItems
	}
	b.Status = BillStatusIssued
	if b.Total() == 0 {
		b.Status = BillStatusPaid
	}
	b.IssuedAt = &now
	b.touch(now)
	return nil
}

func (b *Bill) payable() error {
	if b.Status != BillStatusIssued && b.Status != BillStatusPartiallyPaid {
		return ErrBillNotPayable
	}
	return nil
}

func (b *Bill) RecordPayment(amount Money, method PaymentMethod, reference string, paidAt time.Time) (*Payment, error) {
	if err := b.payable(); err != nil {
		return nil, err
	}
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if amount > b.Balance() {
		return nil, ErrPaymentExceedsBalance
	}
	b.Payments = append(b.Payments, Payment{
		ID:        uuid.New(),
		BillID:    b.ID,
		Amount:    amount,
		Method:    method,
		Reference: strings.TrimSpace(reference),
		PaidAt:    paidAt,
	})
	if b.Balance() == 0 {
		b.Status = BillStatusPaid
	} else {
		b.Status = BillStatusPartiallyPaid
	}
	b.touch(paidAt)
	return &b.Payments[len(b.Payments)-1], nil
}

func (b *Bill) SubmitClaim(provider, policyNumber string, amount Money, now time.Time) (*InsuranceClaim, error) {
	if err := b.payable(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if amount > b.Balance() {
		return nil, ErrPaymentExceedsBalance
	}
	b.Claims = append(b.Claims, InsuranceClaim{
		ID:            uuid.New(),
		BillID:        b.ID,
		Provider:      strings.TrimSpace(provider),
		PolicyNumber:  strings.TrimSpace(policyNumber),
		ClaimedAmount: amount,
		Status:        ClaimStatusSubmitted,
		SubmittedAt:   now,
	})
	b.touch(now)
	return &b.Claims[len(b.Claims)-1], nil
}

func (b *Bill) pendingClaim(claimID uuid.UUID) (*InsuranceClaim, error) {
	for i := range b.Claims {
		if b.Claims[i].ID == claimID {
			if b.Claims[i].Status != ClaimStatusSubmitted {
				return nil, ErrClaimNotPending
			}
			return &b.Claims[i], nil
		}
	}
	return nil, ErrClaimNotFound
}

// ApproveClaim settles the approved amount as an insurance payment
func (b *Bill) ApproveClaim(claimID uuid.UUID, approved Money, now time.Time) error {
	claim, err := b.pendingClaim(claimID)
	if err != nil {
		return err
	}
	if approved <= 0 || approved > claim.ClaimedAmount {
		return fmt.Errorf("approved amount must be between 0 and %s: %w", claim.ClaimedAmount, ErrNonPositiveAmount)
	}
	if _, err := b.RecordPayment(approved, PaymentMethodInsurance, claim.PolicyNumber, now); err != nil {
		return err
	}
	claim.Status = ClaimStatusApproved
	claim.ApprovedAmount = approved
	claim.ResolvedAt = &now
	return nil
}

func (b *Bill) RejectClaim(claimID uuid.UUID, remarks string, now time.Time) error {
	claim, err := b.pendingClaim(claimID)
	if err != nil {
		return err
	}
	claim.Status = ClaimStatusRejected
	claim.Remarks = strings.TrimSpace(remarks)
	claim.ResolvedAt = &now
	b.touch(now)
	return nil
}

func (b *Bill) Cancel(now time.Time) error {
	if b.Status == BillStatusCancelled {
		return ErrBillCancelled
	}
	if len(b.Payments) > 0 {
		return ErrBillHasPayments
	}
	b.Status = BillStatusCancelled
	b.touch(now)
	return nil
}

// CanDelete reports whether the bill may be removed outright
func (b *Bill) CanDelete() error {
	if b.Status != BillStatusDraft {
		return ErrBillNotDraft
	}
	if len(b.Payments) > 0 {
		return ErrBillHasPayments
	}
	return nil
}

type BillFilters struct {
	PatientID uuid.UUID
	Status    BillStatus
}
