package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/billing"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type envelope struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    dto.BillDTO            `json:"data"`
	Errors  []apperrors.FieldError `json:"errors"`
}

var (
	billID  = uuid.MustParse("3d8a1f6c-5b2e-4c9d-a7f0-6e1b4c2d9a85")
	claimID = uuid.MustParse("9e4b7c2a-6d1f-4a3e-8b5c-2f7a0d9e1c46")
	itemID  = uuid.MustParse("1a5c8e3b-7f2d-4e6a-9c0b-4d8f1a6e2b37")
)

func setup(t *testing.T, guard ...gin.HandlerFunc) (*gin.Engine, *[]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var got []any
	record := func(req any) (dto.BillDTO, error) {
		got = append(got, req)
		return dto.BillDTO{ID: billID, Status: "issued"}, nil
	}
	m := mediator.New(mediator.Validation(mediator.NewValidator()))

	mediator.Register(m, func(_ context.Context, cmd billing.CreateBillCommand) (dto.BillDTO, error) { return record(cmd) })
	mediator.Register(m, func(_ context.Context, cmd billing.AddBillItemCommand) (dto.BillDTO, error) { return record(cmd) })
	mediator.Register(m, func(_ context.Context, cmd billing.RemoveBillItemCommand) (dto.BillDTO, error) { return record(cmd) })
	mediator.Register(m, func(_ context.Context, cmd billing.RecordPaymentCommand) (dto.BillDTO, error) { return record(cmd) })
	mediator.Register(m, func(_ context.Context, cmd billing.ApproveClaimCommand) (dto.BillDTO, error) { return record(cmd) })
	mediator.Register(m, func(_ context.Context, cmd billing.RejectClaimCommand) (dto.BillDTO, error) { return record(cmd) })
	mediator.Register(m, func(_ context.Context, cmd billing.IssueBillCommand) (dto.BillDTO, error) {
		got = append(got, cmd)
		return dto.BillDTO{}, apperrors.BusinessRule(model.ErrBillHasNoItems.Error(), model.ErrBillHasNoItems)
	})
	mediator.Register(m, func(_ context.Context, q billing.GetBillQuery) (dto.BillDTO, error) {
		if q.ID != billID {
			return dto.BillDTO{}, apperrors.NotFound("bill", nil)
		}
		return dto.BillDTO{ID: q.ID}, nil
	})
	mediator.Register(m, func(_ context.Context, q billing.ListBillsQuery) (dto.Page[dto.BillDTO], error) {
		got = append(got, q)
		return dto.NewPage([]dto.BillDTO{}, q.Pagination(), 0, func(b dto.BillDTO) dto.BillDTO { return b }), nil
	})

	r := gin.New()
	NewHandler(m).RegisterRoutes(r.Group("/api/v1"), guard...)
	return r, &got
}

func do(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestBillRoutesBindPathIDs(t *testing.T) {
	bill := "/api/v1/bills/" + billID.String()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   any
	}{
		{
			name: "add item", method: http.MethodPost, path: bill + "/items",
			body: `{"description":"CBC","quantity":2,"unit_price":35050}`,
			want: billing.AddBillItemCommand{BillID: billID, ItemInput: billing.ItemInput{Description: "CBC", Quantity: 2, UnitPrice: 35050}},
		},
		{
			name: "remove item", method: http.MethodDelete, path: bill + "/items/" + itemID.String(),
			want: billing.RemoveBillItemCommand{BillID: billID, ItemID: itemID},
		},
		{
			name: "record payment", method: http.MethodPost, path: bill + "/payments",
			body: `{"amount":50000,"method":"gcash","reference":"GC-123"}`,
			want: billing.RecordPaymentCommand{BillID: billID, Amount: 50000, Method: model.PaymentMethod("gcash"), Reference: "GC-123"},
		},
		{
			name: "approve claim", method: http.MethodPost, path: bill + "/claims/" + claimID.String() + "/approve",
			body: `{"approved_amount":120000}`,
			want: billing.ApproveClaimCommand{BillID: billID, ClaimID: claimID, ApprovedAmount: 120000},
		},
		{
			name: "reject claim", method: http.MethodPost, path: bill + "/claims/" + claimID.String() + "/reject",
			body: `{"reason":"policy lapsed"}`,
			want: billing.RejectClaimCommand{BillID: billID, ClaimID: claimID, Reason: "policy lapsed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, got := setup(t)

			w, env := do(r, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, handler.StatusSuccess, env.Status)
			require.Len(t, *got, 1)
			assert.Equal(t, tt.want, (*got)[0])
		})
	}
}

func TestClaimRoutesRejectBadInput(t *testing.T) {
	bill := "/api/v1/bills/" + billID.String()

	tests := []struct {
		name   string
		path   string
		body   string
		fields []apperrors.FieldError
	}{
		{"bad claim id", bill + "/claims/nope/approve", `{"approved_amount":100}`,
			[]apperrors.FieldError{{Field: "claimId", Message: "must be a valid UUID"}}},
		{"bad bill id", "/api/v1/bills/nope/claims/" + claimID.String() + "/reject", `{"reason":"x"}`,
			[]apperrors.FieldError{{Field: "id", Message: "must be a valid UUID"}}},
		{"zero approved amount", bill + "/claims/" + claimID.String() + "/approve", `{"approved_amount":0}`, nil},
		{"missing reason", bill + "/claims/" + claimID.String() + "/reject", `{}`,
			[]apperrors.FieldError{{Field: "reason", Message: "is required"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, got := setup(t)

			w, env := do(r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Empty(t, *got)
			if tt.fields != nil {
				assert.Equal(t, tt.fields, env.Errors)
			} else {
				assert.NotEmpty(t, env.Errors)
			}
		})
	}
}

func TestAddItemBounds(t *testing.T) {
	r, got := setup(t)
	path := "/api/v1/bills/" + billID.String() + "/items"

	w, env := do(r, http.MethodPost, path, `{"description":"Implant","quantity":2,"unit_price":4611686018427387905}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "unit_price", env.Errors[0].Field)

	w, env = do(r, http.MethodPost, path, `{"description":"Gauze","quantity":10001,"unit_price":100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "quantity", env.Errors[0].Field)
	assert.Empty(t, *got)
}

func TestIssueBillBusinessRule(t *testing.T) {
	r, _ := setup(t)

	w, env := do(r, http.MethodPost, "/api/v1/bills/"+billID.String()+"/issue", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "bill has no items", env.Message)
}

func TestGuardOnlyCoversWrites(t *testing.T) {
	deny := func(c *gin.Context) {
		handler.Error(c, apperrors.Forbidden("permission denied"))
		c.Abort()
	}
	r, got := setup(t, deny)

	w, _ := do(r, http.MethodGet, "/api/v1/bills/"+billID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(r, http.MethodGet, "/api/v1/bills?status=paid&patient_id="+uuid.NewString(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(r, http.MethodPost, "/api/v1/bills/"+billID.String()+"/claims/"+claimID.String()+"/approve", `{"approved_amount":100}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.Len(t, *got, 1)
	q := (*got)[0].(billing.ListBillsQuery)
	assert.Equal(t, model.BillStatus("paid"), q.Status)
}

func TestListBillsRejectsBadStatus(t *testing.T) {
	r, _ := setup(t)

	w, env := do(r, http.MethodGet, "/api/v1/bills?status=overdue", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "status", env.Errors[0].Field)
}
