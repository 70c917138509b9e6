// Package handler holds the shared request parsing and response rendering used by the
// per-resource gin handlers.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

const ContextPrincipal = "principal"

func SetPrincipal(c *gin.Context, p model.Principal) {
	c.Set(ContextPrincipal, p)
}

// Principal returns the authenticated staff member. ok is false on public routes.
func Principal(c *gin.Context) (model.Principal, bool) {
	v, exists := c.Get(ContextPrincipal)
	if !exists {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}

func invalid(field, message string) *apperrors.AppError {
	return apperrors.Validation([]apperrors.FieldError{{Field: field, Message: message}})
}

// ParamID parses a uuid path parameter, rendering 400 when it is malformed
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		Error(c, invalid(name, "must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// BindJSON decodes the body into req. Field rules are checked later by the mediator.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		Error(c, apperrors.BadRequest("invalid request body", err))
		return false
	}
	return true
}

// Page reads page and pageSize; missing values fall back to the defaults
func Page(c *gin.Context) (service.PageRequest, bool) {
	var p service.PageRequest
	var ok bool
	if p.Page, ok = queryInt(c, "page"); !ok {
		return p, false
	}
	if p.PageSize, ok = queryInt(c, "pageSize"); !ok {
		return p, false
	}
	return p, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		Error(c, invalid(name, "must be a non-negative integer"))
		return 0, false
	}
	return n, true
}

// QueryUUID returns uuid.Nil when the parameter is absent
func QueryUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		Error(c, invalid(name, "must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// QueryDate returns the zero Date when the parameter is absent
func QueryDate(c *gin.Context, name string) (service.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		return service.Date{}, true
	}
	d, err := service.ParseDate(raw)
	if err != nil {
		Error(c, invalid(name, err.Error()))
		return service.Date{}, false
	}
	return d, true
}
