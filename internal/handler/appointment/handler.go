package appointment

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/appointment"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type Handler struct {
	mediator *mediator.Mediator
}

func NewHandler(m *mediator.Mediator) *Handler {
	return &Handler{mediator: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/availability", h.CheckAvailability)
		appointments.GET("/slots", h.AvailableSlots)
		appointments.POST("", h.ScheduleAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
		appointments.POST("/:id/reschedule", h.RescheduleAppointment)
		appointments.POST("/:id/start", h.StartAppointment)
		appointments.POST("/:id/complete", h.CompleteAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		appointments.POST("/:id/no-show", h.MarkNoShow)
	}
}

func invalid(field, message string) *apperrors.AppError {
	return apperrors.Validation([]apperrors.FieldError{{Field: field, Message: message}})
}

func durationQuery(c *gin.Context) (int, bool) {
	raw := c.Query("duration_minutes")
	if raw == "" {
		return 0, true
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		handler.Error(c, invalid("duration_minutes", "must be an integer"))
		return 0, false
	}
	return minutes, true
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	doctorID, ok := handler.QueryUUID(c, "doctor_id")
	if !ok {
		return
	}
	start, err := time.Parse(time.RFC3339, c.Query("start_time"))
	if err != nil {
		handler.Error(c, invalid("start_time", "must be an RFC 3339 timestamp"))
		return
	}
	minutes, ok := durationQuery(c)
	if !ok {
		return
	}
	handler.Dispatch[dto.AvailabilityDTO](c, h.mediator, http.StatusOK, appointment.CheckAvailabilityQuery{
		DoctorID: doctorID,
		Window:   appointment.Window{StartTime: start, DurationMinutes: minutes},
	})
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	doctorID, ok := handler.QueryUUID(c, "doctor_id")
	if !ok {
		return
	}
	date, ok := handler.QueryDate(c, "date")
	if !ok {
		return
	}
	minutes, ok := durationQuery(c)
	if !ok {
		return
	}
	handler.Dispatch[[]model.TimeSlot](c, h.mediator, http.StatusOK, appointment.AvailableSlotsQuery{
		DoctorID:        doctorID,
		Date:            date,
		DurationMinutes: minutes,
	})
}

func (h *Handler) ScheduleAppointment(c *gin.Context) {
	var cmd appointment.ScheduleAppointmentCommand
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.AppointmentDTO](c, h.mediator, http.StatusCreated, cmd)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	page, ok := handler.Page(c)
	if !ok {
		return
	}
	q := appointment.ListAppointmentsQuery{PageRequest: page, Status: model.AppointmentStatus(c.Query("status"))}
	if q.DoctorID, ok = handler.QueryUUID(c, "doctor_id"); !ok {
		return
	}
	if q.PatientID, ok = handler.QueryUUID(c, "patient_id"); !ok {
		return
	}
	if q.From, ok = handler.QueryDate(c, "from"); !ok {
		return
	}
	if q.To, ok = handler.QueryDate(c, "to"); !ok {
		return
	}
	handler.Dispatch[dto.Page[dto.AppointmentDTO]](c, h.mediator, http.StatusOK, q)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.AppointmentDTO](c, h.mediator, http.StatusOK, appointment.GetAppointmentQuery{ID: id})
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[struct{}](c, h.mediator, http.StatusNoContent, appointment.DeleteAppointmentCommand{ID: id})
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := appointment.RescheduleAppointmentCommand{ID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.AppointmentDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) StartAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.AppointmentDTO](c, h.mediator, http.StatusOK, appointment.StartAppointmentCommand{ID: id})
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := appointment.CompleteAppointmentCommand{ID: id}
	if c.Request.ContentLength != 0 && !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.AppointmentDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	cmd := appointment.CancelAppointmentCommand{ID: id}
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[dto.AppointmentDTO](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	handler.Dispatch[dto.AppointmentDTO](c, h.mediator, http.StatusOK, appointment.MarkNoShowCommand{ID: id})
}
