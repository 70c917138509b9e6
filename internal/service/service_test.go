package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

func TestRule(t *testing.T) {
	assert.Nil(t, Rule(nil))

	err := Rule(model.ErrAlreadyInactive)
	assert.True(t, apperrors.Is(err, apperrors.ErrBusinessRule))
	assert.ErrorIs(t, err, model.ErrAlreadyInactive)

	notFound := apperrors.NotFound("bill", nil)
	assert.Same(t, notFound, Rule(notFound))
}

func TestFields(t *testing.T) {
	var f Fields
	assert.NoError(t, f.Err())

	f.Check("email", nil)
	f.Check("phone", errors.New("bad phone"))
	f.RequireID("patient_id", [16]byte{})

	appErr := apperrors.From(f.Err())
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Equal(t, []apperrors.FieldError{
		{Field: "phone", Message: "bad phone"},
		{Field: "patient_id", Message: "is required"},
	}, appErr.Fields)
}

func TestDate(t *testing.T) {
	var body struct {
		DOB Date `json:"dob"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dob":"1990-03-11"}`), &body))
	assert.Equal(t, 1990, body.DOB.Year())

	require.NoError(t, json.Unmarshal([]byte(`{"dob":"1990-03-11T08:00:00+08:00"}`), &body))
	assert.Equal(t, 11, body.DOB.Day())

	assert.Error(t, json.Unmarshal([]byte(`{"dob":"11/03/1990"}`), &body))

	out, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, `""`, string(out))
}

func TestPageRequest(t *testing.T) {
	assert.Equal(t, model.Pagination{Page: 1, PageSize: model.DefaultPageSize}, PageRequest{}.Pagination())
	assert.Equal(t, model.Pagination{Page: 3, PageSize: model.MaxPageSize}, PageRequest{Page: 3, PageSize: 1000}.Pagination())
}

func TestPageRequestBounds(t *testing.T) {
	v := mediator.NewValidator()

	assert.NoError(t, v.Struct(PageRequest{Page: model.MaxPage, PageSize: 50}))
	assert.Error(t, v.Struct(PageRequest{Page: model.MaxPage + 1}))
	assert.Error(t, v.Struct(PageRequest{Page: -1}))

	assert.Equal(t, model.MaxPage, PageRequest{Page: 1 << 40}.Pagination().Page)
}
