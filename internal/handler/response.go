package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/service"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
	"github.com/jwalitptl/clinic-api/pkg/result"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Response struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: StatusSuccess,
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  StatusError,
		Message: message,
	}
}

// Error renders err with the status its code maps to. Internal details never reach the client.
func Error(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	resp := NewErrorResponse(appErr.Message)
	resp.Errors = appErr.Fields
	c.AbortWithStatusJSON(appErr.HTTPStatus(), resp)
}

// Respond writes a mediator result. Failures are also attached to the context for the
// error logging middleware.
func Respond[T any](c *gin.Context, status int, r result.Result[T]) {
	if r.IsFailure() {
		appErr := r.Error()
		_ = c.Error(appErr)
		Error(c, appErr)
		return
	}
	if status == http.StatusNoContent {
		c.Status(status)
		return
	}
	c.JSON(status, NewSuccessResponse(r.Value()))
}

// Dispatch sends req through the mediator and renders the outcome
func Dispatch[T any](c *gin.Context, m *mediator.Mediator, status int, req any) {
	Respond(c, status, mediator.Send[T](c.Request.Context(), m, req))
}

// Upsert renders 201 when the PUT created the resource and 200 otherwise
func Upsert[T any](c *gin.Context, m *mediator.Mediator, req any) {
	r := mediator.Send[service.Upserted[T]](c.Request.Context(), m, req)
	if r.IsFailure() {
		Respond(c, http.StatusOK, r)
		return
	}
	status := http.StatusOK
	if r.Value().Created {
		status = http.StatusCreated
	}
	c.JSON(status, NewSuccessResponse(r.Value().Value))
}
