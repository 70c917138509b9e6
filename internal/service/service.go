// Package service holds helpers shared by the per-aggregate command and query handlers.
package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// Clock returns the current instant. Handlers take one so tests can pin time.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// PageRequest is embedded by list queries
type PageRequest struct {
	Page     int `json:"page" form:"page" validate:"gte=0,lte=21474836"`
	PageSize int `json:"pageSize" form:"pageSize" validate:"gte=0"`
}

func (p PageRequest) Pagination() model.Pagination {
	return model.Pagination{Page: p.Page, PageSize: p.PageSize}.Normalize()
}

// Rule wraps a domain error as a business-rule failure
func Rule(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.BusinessRule(err.Error(), err)
}

// Invalid reports a single field failure, typically from a value object constructor
func Invalid(field string, err error) error {
	return apperrors.Validation([]apperrors.FieldError{{Field: field, Message: err.Error()}})
}

// Fields accumulates value object failures so every bad field is reported together
type Fields []apperrors.FieldError

func (f *Fields) Check(field string, err error) {
	if err != nil {
		*f = append(*f, apperrors.FieldError{Field: field, Message: err.Error()})
	}
}

// Err returns nil when nothing failed
func (f Fields) Err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.Validation(f)
}

// RequireID adds a failure for a missing identifier
func (f *Fields) RequireID(field string, id uuid.UUID) {
	if id == uuid.Nil {
		*f = append(*f, apperrors.FieldError{Field: field, Message: "is required"})
	}
}

// Upserted tells the caller whether a PUT created the resource
type Upserted[T any] struct {
	Value   T
	Created bool
}
