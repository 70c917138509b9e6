package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/doctor"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type Handler struct {
	mediator *mediator.Mediator
}

func NewHandler(m *mediator.Mediator) *Handler {
	return &Handler{mediator: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("", h.CreateDoctor)
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.PATCH("/:id", h.UpdateDoctor)
		doctors.PUT("/:id", h.UpsertDoctor)
		doctors.DELETE("/:id", h.DeleteDoctor)
		doctors.POST("/:id/deactivate", h.DeactivateDoctor)
		doctors.POST("/:id/activate", h.ActivateDoctor)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var cmd doctor.CreateDoctorCommand
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.DoctorDTO](c, h.mediator, http.StatusCreated, cmd)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	page, ok := handler.Page(c)
	if !ok {
		return
	}
	handler.Dispatch[dto.Page[dto.DoctorDTO]](c, h.mediator, http.StatusOK, doctor.ListDoctorsQuery{
		PageRequest:    page,
		Specialization: c.Query("specialization"),
		Status:         model.Status(c.Query("status")),
		Search:         c.Query("search"),
	})
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.DoctorDTO](c, h.mediator, http.StatusOK, doctor.GetDoctorQuery{ID: id})
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := doctor.UpdateDoctorCommand{ID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.DoctorDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) UpsertDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := doctor.UpsertDoctorCommand{ID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Upsert[dto.DoctorDTO](c, h.mediator, cmd)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[struct{}](c, h.mediator, http.StatusNoContent, doctor.DeleteDoctorCommand{ID: id})
}

func (h *Handler) DeactivateDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.DoctorDTO](c, h.mediator, http.StatusOK, doctor.DeactivateDoctorCommand{ID: id})
}

func (h *Handler) ActivateDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.DoctorDTO](c, h.mediator, http.StatusOK, doctor.ActivateDoctorCommand{ID: id})
}
