package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type Handler struct {
	mediator *mediator.Mediator
}

func NewHandler(m *mediator.Mediator) *Handler {
	return &Handler{mediator: m}
}

// RegisterRoutes mounts the public login route
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}

// RegisterProtectedRoutes mounts routes that need a bearer token
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", h.Me)
}

func (h *Handler) Login(c *gin.Context) {
	var cmd auth.LoginCommand
	if !handler.BindJSON(c, &cmd) {
		return
	}
	handler.Dispatch[model.TokenResponse](c, h.mediator, http.StatusOK, cmd)
}

func (h *Handler) Me(c *gin.Context) {
	p, ok := handler.Principal(c)
	if !ok {
		handler.Error(c, apperrors.Unauthorized(nil))
		return
	}
	handler.Dispatch[dto.StaffDTO](c, h.mediator, http.StatusOK, auth.CurrentStaffQuery{StaffID: p.StaffID})
}
