package staff

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/staff"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type Handler struct {
	mediator *mediator.Mediator
}

func NewHandler(m *mediator.Mediator) *Handler {
	return &Handler{mediator: m}
}

// RegisterRoutes expects r to be restricted to administrators already
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	members := r.Group("/staff")
	{
		members.POST("", h.CreateStaff)
		members.GET("", h.ListStaff)
		members.GET("/:id", h.GetStaff)
		members.PATCH("/:id", h.UpdateStaff)
		members.DELETE("/:id", h.DeleteStaff)
		members.PUT("/:id/role", h.ChangeRole)
		members.PUT("/:id/password", h.ChangePassword)
		members.POST("/:id/deactivate", h.DeactivateStaff)
		members.POST("/:id/activate", h.ActivateStaff)
	}
}

func actor(c *gin.Context) uuid.UUID {
	p, _ := handler.Principal(c)
	return p.StaffID
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var cmd staff.CreateStaffCommand
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.StaffDTO](c, h.mediator, http.StatusCreated, cmd)
}

func (h *Handler) ListStaff(c *gin.Context) {
	page, ok := handler.Page(c)
	if !ok {
		return
	}
	handler.Dispatch[dto.Page[dto.StaffDTO]](c, h.mediator, http.StatusOK, staff.ListStaffQuery{
		PageRequest: page,
		Role:        model.StaffRole(c.Query("role")),
		Status:      model.Status(c.Query("status")),
		Search:      c.Query("search"),
	})
}

func (h *Handler) GetStaff(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.StaffDTO](c, h.mediator, http.StatusOK, staff.GetStaffQuery{ID: id})
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := staff.UpdateStaffCommand{ID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.StaffDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) ChangeRole(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := staff.ChangeStaffRoleCommand{ID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.StaffDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := staff.ChangeStaffPasswordCommand{ID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.StaffDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[struct{}](c, h.mediator, http.StatusNoContent, staff.DeleteStaffCommand{ID: id, ActorID: actor(c)})
}

func (h *Handler) DeactivateStaff(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.StaffDTO](c, h.mediator, http.StatusOK, staff.DeactivateStaffCommand{ID: id, ActorID: actor(c)})
}

func (h *Handler) ActivateStaff(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.StaffDTO](c, h.mediator, http.StatusOK, staff.ActivateStaffCommand{ID: id})
}
