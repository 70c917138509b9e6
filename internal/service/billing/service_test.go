package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func draft(t *testing.T, items ...model.Money) *model.Bill {
	t.Helper()
	b := model.NewBill(uuid.New(), nil, nil, now.Add(-time.Hour))
	for _, price := range items {
		_, err := b.AddItem("Consultation", 1, price, now.Add(-time.Hour))
		require.NoError(t, err)
	}
	return b
}

func issued(t *testing.T, items ...model.Money) *model.Bill {
	t.Helper()
	b := draft(t, items...)
	require.NoError(t, b.Issue(now.Add(-time.Hour)))
	return b
}

func TestCreateChecksAppointmentPatient(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	patientID := uuid.New()
	a, err := model.NewAppointment(uuid.New(), uuid.New(), now.Add(time.Hour), 30*time.Minute, "checkup", now)
	require.NoError(t, err)
	uow.Patients.On("Get", mock.Anything, patientID).Return(&model.Patient{}, nil)
	uow.Appointments.On("Get", mock.Anything, a.ID).Return(a, nil)

	_, err = NewService(uow, clock).Create(context.Background(), CreateBillCommand{PatientID: patientID, AppointmentID: &a.ID})

	assert.ErrorIs(t, err, ErrAppointmentMismatch)
	uow.Bills.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateWithItems(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	patientID := uuid.New()
	uow.Patients.On("Get", mock.Anything, patientID).Return(&model.Patient{}, nil)
	uow.Bills.On("Create", mock.Anything, mock.AnythingOfType("*model.Bill")).Return(nil)

	out, err := NewService(uow, clock).Create(context.Background(), CreateBillCommand{
		PatientID: patientID,
		Items: []ItemInput{
			{Description: "Consultation", Quantity: 1, UnitPrice: model.Pesos(800, 0)},
			{Description: "Eye drops", Quantity: 2, UnitPrice: model.Pesos(150, 50)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "draft", out.Status)
	assert.Equal(t, model.Pesos(1101, 0), out.Total)
	assert.Len(t, out.Items, 2)
}

func TestApplyDiscountOverSubtotalIsNotSaved(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	bill := draft(t, model.Pesos(500, 0))
	uow.Bills.On("Get", mock.Anything, bill.ID).Return(bill, nil)

	_, err := NewService(uow, clock).ApplyDiscount(context.Background(), ApplyDiscountCommand{BillID: bill.ID, Amount: model.Pesos(600, 0)})

	assert.True(t, apperrors.Is(err, apperrors.ErrBusinessRule))
	assert.ErrorIs(t, err, model.ErrDiscountExceedsTotal)
	assert.Equal(t, model.Money(0), bill.Discount)
	uow.Bills.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Equal(t, 1, uow.Rollbacks)
}

func TestIssueWritesEvent(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	bill := draft(t, model.Pesos(500, 0))
	uow.Bills.On("Get", mock.Anything, bill.ID).Return(bill, nil)
	uow.Bills.On("Update", mock.Anything, bill).Return(nil)
	uow.Outbox.On("Create", mock.Anything, mock.MatchedBy(func(e *model.OutboxEvent) bool {
		return e.EventType == model.EventBillIssued && e.AggregateID == bill.ID
	})).Return(nil)

	out, err := NewService(uow, clock).Issue(context.Background(), IssueBillCommand{BillID: bill.ID})

	require.NoError(t, err)
	assert.Equal(t, "issued", out.Status)
	uow.AssertExpectations(t)
}

func TestRecordPayment(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	bill := issued(t, model.Pesos(500, 0))
	uow.Bills.On("Get", mock.Anything, bill.ID).Return(bill, nil)
	uow.Bills.On("Update", mock.Anything, bill).Return(nil)
	uow.Outbox.On("Create", mock.Anything, mock.MatchedBy(func(e *model.OutboxEvent) bool {
		return e.EventType == model.EventBillPaymentRecorded
	})).Return(nil)
	svc := NewService(uow, clock)

	out, err := svc.RecordPayment(context.Background(), RecordPaymentCommand{BillID: bill.ID, Amount: model.Pesos(200, 0), Method: model.PaymentMethodGCash})
	require.NoError(t, err)
	assert.Equal(t, "partially_paid", out.Status)
	assert.Equal(t, model.Pesos(300, 0), out.Balance)

	_, err = svc.RecordPayment(context.Background(), RecordPaymentCommand{BillID: bill.ID, Amount: model.Pesos(400, 0), Method: model.PaymentMethodCash})
	assert.ErrorIs(t, err, model.ErrPaymentExceedsBalance)

	out, err = svc.RecordPayment(context.Background(), RecordPaymentCommand{BillID: bill.ID, Amount: model.Pesos(300, 0), Method: model.PaymentMethodCash})
	require.NoError(t, err)
	assert.Equal(t, "paid", out.Status)
	assert.Equal(t, model.Money(0), out.Balance)
}

func TestApproveClaimRecordsInsurancePayment(t *testing.T) {
	uow := mocks.NewUnitOfWork()
	bill := issued(t, model.Pesos(1000, 0))
	claim, err := bill.SubmitClaim("PhilHealth", "PH-123", model.Pesos(600, 0), now)
	require.NoError(t, err)
	uow.Bills.On("Get", mock.Anything, bill.ID).Return(bill, nil)
	uow.Bills.On("Update", mock.Anything, bill).Return(nil)
	uow.Outbox.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := NewService(uow, clock).ApproveClaim(context.Background(), ApproveClaimCommand{
		BillID: bill.ID, ClaimID: claim.ID, ApprovedAmount: model.Pesos(500, 0),
	})

	require.NoError(t, err)
	require.Len(t, out.Payments, 1)
	assert.Equal(t, "insurance", out.Payments[0].Method)
	assert.Equal(t, model.Pesos(500, 0), out.Balance)
	assert.Equal(t, "approved", out.Claims[0].Status)
}

func TestDelete(t *testing.T) {
	t.Run("issued bill is refused", func(t *testing.T) {
		uow := mocks.NewUnitOfWork()
		bill := issued(t, model.Pesos(500, 0))
		uow.Bills.On("Get", mock.Anything, bill.ID).Return(bill, nil)

		_, err := NewService(uow, clock).Delete(context.Background(), DeleteBillCommand{ID: bill.ID})

		assert.ErrorIs(t, err, model.ErrBillNotDraft)
		uow.Bills.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("draft bill", func(t *testing.T) {
		uow := mocks.NewUnitOfWork()
		bill := draft(t)
		uow.Bills.On("Get", mock.Anything, bill.ID).Return(bill, nil)
		uow.Bills.On("Delete", mock.Anything, bill.ID, now).Return(nil)

		_, err := NewService(uow, clock).Delete(context.Background(), DeleteBillCommand{ID: bill.ID})

		require.NoError(t, err)
		uow.AssertExpectations(t)
	})
}

func TestItemInputBounds(t *testing.T) {
	v := mediator.NewValidator()
	tests := []struct {
		name  string
		input ItemInput
		ok    bool
	}{
		{"within bounds", ItemInput{Description: "Consultation", Quantity: 10000, UnitPrice: 1_000_000_000_000}, true},
		{"quantity too large", ItemInput{Description: "Consultation", Quantity: 10001, UnitPrice: 100}, false},
		{"price too large", ItemInput{Description: "Consultation", Quantity: 1, UnitPrice: 1_000_000_000_001}, false},
		{"zero quantity", ItemInput{Description: "Consultation", UnitPrice: 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
