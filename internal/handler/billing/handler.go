package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/billing"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type Handler struct {
	mediator *mediator.Mediator
}

func NewHandler(m *mediator.Mediator) *Handler {
	return &Handler{mediator: m}
}

// RegisterRoutes mounts the bill routes. guard runs before every route that changes a bill.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, guard ...gin.HandlerFunc) {
	bills := r.Group("/bills")
	bills.GET("", h.ListBills)
	bills.GET("/:id", h.GetBill)

	writes := bills.Group("", guard...)
	{
		writes.POST("", h.CreateBill)
		writes.DELETE("/:id", h.DeleteBill)
		writes.POST("/:id/items", h.AddItem)
		writes.DELETE("/:id/items/:itemId", h.RemoveItem)
		writes.POST("/:id/discount", h.ApplyDiscount)
		writes.POST("/:id/issue", h.IssueBill)
		writes.POST("/:id/payments", h.RecordPayment)
		writes.POST("/:id/claims", h.SubmitClaim)
		writes.POST("/:id/claims/:claimId/approve", h.ApproveClaim)
		writes.POST("/:id/claims/:claimId/reject", h.RejectClaim)
		writes.POST("/:id/cancel", h.CancelBill)
	}
}

func (h *Handler) CreateBill(c *gin.Context) {
	var cmd billing.CreateBillCommand
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.BillDTO](c, h.mediator, http.StatusCreated, cmd)
}

func (h *Handler) ListBills(c *gin.Context) {
	page, ok := handler.Page(c)
	if !ok {
		return
	}
	q := billing.ListBillsQuery{PageRequest: page, Status: model.BillStatus(c.Query("status"))}
	if q.PatientID, ok = handler.QueryUUID(c, "patient_id"); !ok {
		return
	}
	handler.Dispatch[dto.Page[dto.BillDTO]](c, h.mediator, http.StatusOK, q)
}

func (h *Handler) GetBill(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.BillDTO](c, h.mediator, http.StatusOK, billing.GetBillQuery{ID: id})
}

func (h *Handler) DeleteBill(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[struct{}](c, h.mediator, http.StatusNoContent, billing.DeleteBillCommand{ID: id})
}

func (h *Handler) AddItem(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := billing.AddBillItemCommand{BillID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.BillDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	itemID, ok := handler.ParamID(c, "itemId")
	if !ok {
		return
	}
	handler.Dispatch[dto.BillDTO](c, h.mediator, http.StatusOK, billing.RemoveBillItemCommand{BillID: id, ItemID: itemID})
}

func (h *Handler) ApplyDiscount(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := billing.ApplyDiscountCommand{BillID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.BillDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) IssueBill(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.BillDTO](c, h.mediator, http.StatusOK, billing.IssueBillCommand{BillID: id})
}

func (h *Handler) RecordPayment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := billing.RecordPaymentCommand{BillID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.BillDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) SubmitClaim(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := billing.SubmitClaimCommand{BillID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.BillDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) ApproveClaim(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	claimID, ok := handler.ParamID(c, "claimId")
	if !ok {
		return
	}
	cmd := billing.ApproveClaimCommand{BillID: id, ClaimID: claimID}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.BillDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) RejectClaim(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	claimID, ok := handler.ParamID(c, "claimId")
	if !ok {
		return
	}
	cmd := billing.RejectClaimCommand{BillID: id, ClaimID: claimID}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.BillDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) CancelBill(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.BillDTO](c, h.mediator, http.StatusOK, billing.CancelBillCommand{BillID: id})
}
