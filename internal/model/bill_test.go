package model

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftBill(t *testing.T) *Bill {
	t.Helper()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	b := NewBill(uuid.New(), nil, nil, now)
	_, err := b.AddItem("Consultation", 1, Pesos(800, 0), now)
	require.NoError(t, err)
	_, err = b.AddItem("CBC", 2, Pesos(350, 50), now)
	require.NoError(t, err)
	return b
}

func TestBillTotals(t *testing.T) {
	b := draftBill(t)

	assert.Equal(t, Pesos(1501, 0), b.Subtotal())
	assert.Equal(t, b.Subtotal(), b.Total())
	assert.Equal(t, b.Total(), b.Balance())
	assert.Contains(t, b.BillNumber, "BILL-20250310-")
}

func TestApplyDiscount(t *testing.T) {
	now := time.Now()

	t.Run("within subtotal", func(t *testing.T) {
		b := draftBill(t)
		require.NoError(t, b.ApplyDiscount(Pesos(300, 20), now))
		assert.Equal(t, Pesos(1200, 80), b.Total())
	})

	t.Run("equal to subtotal", func(t *testing.T) {
		b := draftBill(t)
		require.NoError(t, b.ApplyDiscount(b.Subtotal(), now))
		assert.Equal(t, Money(0), b.Total())
	})

	t.Run("exceeding subtotal leaves bill unmodified", func(t *testing.T) {
		b := draftBill(t)
		require.NoError(t, b.ApplyDiscount(Pesos(100, 0), now))
		before := *b
		before.Items = append([]BillItem(nil), b.Items...)

		err := b.ApplyDiscount(b.Subtotal()+1, now)

		assert.ErrorIs(t, err, ErrDiscountExceedsTotal)
		assert.Equal(t, before.Discount, b.Discount)
		assert.Equal(t, before.UpdatedAt, b.UpdatedAt)
		assert.Equal(t, before.Items, b.Items)
		assert.Equal(t, before.Status, b.Status)
	})

	t.Run("negative", func(t *testing.T) {
		b := draftBill(t)
		assert.ErrorIs(t, b.ApplyDiscount(-1, now), ErrNegativeAmount)
		assert.Equal(t, Money(0), b.Discount)
	})

	t.Run("after payment", func(t *testing.T) {
		b := draftBill(t)
		require.NoError(t, b.Issue(now))
		_, err := b.RecordPayment(Pesos(100, 0), PaymentMethodCash, "", now)
		require.NoError(t, err)
		assert.Error(t, b.ApplyDiscount(Pesos(10, 0), now))
	})
}

func TestRemoveItemKeepsDiscountWithinSubtotal(t *testing.T) {
	now := time.Now()
	b := draftBill(t)
	require.NoError(t, b.ApplyDiscount(Pesos(750, 0), now))

	assert.ErrorIs(t, b.RemoveItem(b.Items[0].ID, now), ErrDiscountExceedsTotal)
	assert.Len(t, b.Items, 2)

	require.NoError(t, b.RemoveItem(b.Items[1].ID, now))
	assert.Len(t, b.Items, 1)
	assert.ErrorIs(t, b.RemoveItem(uuid.New(), now), ErrItemNotFound)
}

func TestAddItemValidation(t *testing.T) {
	now := time.Now()
	b := NewBill(uuid.New(), nil, nil, now)

	_, err := b.AddItem("", 1, 100, now)
	assert.ErrorIs(t, err, ErrDescriptionRequired)
	_, err = b.AddItem("X-ray", 0, 100, now)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = b.AddItem("X-ray", 1, -100, now)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestAddItemRejectsOverflow(t *testing.T) {
	now := time.Now()
	b := NewBill(uuid.New(), nil, nil, now)

	_, err := b.AddItem("Implant", 2, Money(math.MaxInt64/2+1), now)
	assert.ErrorIs(t, err, ErrAmountTooLarge)
	assert.Empty(t, b.Items)

	_, err = b.AddItem("Implant", 1, Money(math.MaxInt64-10), now)
	require.NoError(t, err)
	_, err = b.AddItem("Gauze", 1, 11, now)
	assert.ErrorIs(t, err, ErrAmountTooLarge)
	assert.Len(t, b.Items, 1)
	assert.Equal(t, Money(math.MaxInt64-10), b.Subtotal())
}

func TestIssueAndPay(t *testing.T) {
	now := time.Now()
	b := draftBill(t)

	_, err := b.RecordPayment(100, PaymentMethodCash, "", now)
	assert.ErrorIs(t, err, ErrBillNotPayable)

	require.NoError(t, b.Issue(now))
	_, err = b.AddItem("late item", 1, 100, now)
	assert.ErrorIs(t, err, ErrBillNotDraft)

	_, err = b.RecordPayment(Pesos(500, 0), PaymentMethod("barter"), "", now)
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = b.RecordPayment(Pesos(500, 0), PaymentMethodGCash, "GC-123", now)
	require.NoError(t, err)
	assert.Equal(t, BillStatusPartiallyPaid, b.Status)
	assert.Equal(t, Pesos(1001, 0), b.Balance())

	_, err = b.RecordPayment(b.Balance()+1, PaymentMethodCash, "", now)
	assert.ErrorIs(t, err, ErrPaymentExceedsBalance)

	_, err = b.RecordPayment(b.Balance(), PaymentMethodCash, "", now)
	require.NoError(t, err)
	assert.Equal(t, BillStatusPaid, b.Status)
	assert.Equal(t, Money(0), b.Balance())
	assert.ErrorIs(t, b.Cancel(now), ErrBillHasPayments)
}

func TestIssueFreeBillIsPaid(t *testing.T) {
	now := time.Now()
	b := NewBill(uuid.New(), nil, nil, now)
	_, err := b.AddItem("Free screening", 1, 0, now)
	require.NoError(t, err)

	require.NoError(t, b.Issue(now))
	assert.Equal(t, BillStatusPaid, b.Status)
}

func TestInsuranceClaims(t *testing.T) {
	now := time.Now()
	b := draftBill(t)
	require.NoError(t, b.Issue(now))

	claim, err := b.SubmitClaim("PhilHealth", "PH-0001", Pesos(1000, 0), now)
	require.NoError(t, err)
	assert.Equal(t, ClaimStatusSubmitted, claim.Status)

	require.NoError(t, b.ApproveClaim(claim.ID, Pesos(800, 0), now))
	assert.Equal(t, ClaimStatusApproved, b.Claims[0].Status)
	assert.Equal(t, Pesos(800, 0), b.Claims[0].ApprovedAmount)
	require.Len(t, b.Payments, 1)
	assert.Equal(t, PaymentMethodInsurance, b.Payments[0].Method)
	assert.Equal(t, BillStatusPartiallyPaid, b.Status)

	assert.ErrorIs(t, b.ApproveClaim(claim.ID, 100, now), ErrClaimNotPending)
	assert.ErrorIs(t, b.RejectClaim(uuid.New(), "", now), ErrClaimNotFound)

	second, err := b.SubmitClaim("Maxicare", "MX-9", Pesos(100, 0), now)
	require.NoError(t, err)
	require.NoError(t, b.RejectClaim(second.ID, "not covered", now))
	assert.Equal(t, ClaimStatusRejected, b.Claims[1].Status)
	assert.Len(t, b.Payments, 1)
}

func TestBillCancelAndDelete(t *testing.T) {
	now := time.Now()
	b := draftBill(t)
	require.NoError(t, b.CanDelete())

	require.NoError(t, b.Cancel(now))
	assert.ErrorIs(t, b.Cancel(now), ErrBillCancelled)
	assert.ErrorIs(t, b.CanDelete(), ErrBillNotDraft)
}
