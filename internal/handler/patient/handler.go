package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/patient"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type Handler struct {
	mediator *mediator.Mediator
}

func NewHandler(m *mediator.Mediator) *Handler {
	return &Handler{mediator: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.RegisterPatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PATCH("/:id", h.UpdatePatient)
		patients.PUT("/:id", h.UpsertPatient)
		patients.DELETE("/:id", h.DeletePatient)
		patients.PUT("/:id/contact", h.UpdateContact)
		patients.POST("/:id/deactivate", h.DeactivatePatient)
		patients.POST("/:id/activate", h.ActivatePatient)
	}
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var cmd patient.RegisterPatientCommand
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.PatientDTO](c, h.mediator, http.StatusCreated, cmd)
}

func (h *Handler) ListPatients(c *gin.Context) {
	page, ok := handler.Page(c)
	if !ok {
		return
	}
	handler.Dispatch[dto.Page[dto.PatientDTO]](c, h.mediator, http.StatusOK, patient.ListPatientsQuery{
		PageRequest: page,
		Status:      model.Status(c.Query("status")),
		Search:      c.Query("search"),
	})
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.PatientDTO](c, h.mediator, http.StatusOK, patient.GetPatientQuery{ID: id})
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := patient.UpdatePatientCommand{ID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.PatientDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) UpsertPatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := patient.UpsertPatientCommand{ID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Upsert[dto.PatientDTO](c, h.mediator, cmd)
}

func (h *Handler) UpdateContact(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := patient.UpdatePatientContactCommand{ID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.PatientDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[struct{}](c, h.mediator, http.StatusNoContent, patient.DeletePatientCommand{ID: id})
}

func (h *Handler) DeactivatePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.PatientDTO](c, h.mediator, http.StatusOK, patient.DeactivatePatientCommand{ID: id})
}

func (h *Handler) ActivatePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.PatientDTO](c, h.mediator, http.StatusOK, patient.ActivatePatientCommand{ID: id})
}
