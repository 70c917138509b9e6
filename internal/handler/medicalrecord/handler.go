package medicalrecord

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/service/medicalrecord"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type Handler struct {
	mediator *mediator.Mediator
}

func NewHandler(m *mediator.Mediator) *Handler {
	return &Handler{mediator: m}
}

// RegisterRoutes mounts the record routes. guard runs before every write.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, guard ...gin.HandlerFunc) {
	records := r.Group("/medical-records")
	records.GET("", h.ListRecords)
	records.GET("/:id", h.GetRecord)

	writes := records.Group("", guard...)
	{
		writes.POST("", h.CreateRecord)
		writes.DELETE("/:id", h.DeleteRecord)
		writes.PUT("/:id/notes", h.UpdateNotes)
		writes.POST("/:id/vital-signs", h.RecordVitalSigns)
		writes.POST("/:id/diagnoses", h.AddDiagnosis)
		writes.POST("/:id/prescriptions", h.AddPrescription)
	}
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var cmd medicalrecord.CreateMedicalRecordCommand
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.MedicalRecordDTO](c, h.mediator, http.StatusCreated, cmd)
}

func (h *Handler) ListRecords(c *gin.Context) {
	page, ok := handler.Page(c)
	if !ok {
		return
	}
	q := medicalrecord.ListMedicalRecordsQuery{PageRequest: page}
	if q.PatientID, ok = handler.QueryUUID(c, "patient_id"); !ok {
		return
	}
	if q.DoctorID, ok = handler.QueryUUID(c, "doctor_id"); !ok {
		return
	}
	handler.Dispatch[dto.Page[dto.MedicalRecordDTO]](c, h.mediator, http.StatusOK, q)
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.MedicalRecordDTO](c, h.mediator, http.StatusOK, medicalrecord.GetMedicalRecordQuery{ID: id})
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[struct{}](c, h.mediator, http.StatusNoContent, medicalrecord.DeleteMedicalRecordCommand{ID: id})
}

func (h *Handler) UpdateNotes(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := medicalrecord.UpdateMedicalRecordNotesCommand{ID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.MedicalRecordDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) RecordVitalSigns(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := medicalrecord.RecordVitalSignsCommand{RecordID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.MedicalRecordDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) AddDiagnosis(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := medicalrecord.AddDiagnosisCommand{RecordID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.MedicalRecordDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) AddPrescription(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := medicalrecord.AddPrescriptionCommand{RecordID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.MedicalRecordDTO](c, h.mediator, http.StatusOK, cmd)
}
