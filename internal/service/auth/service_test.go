package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func setup(t *testing.T) (*Service, *mocks.UnitOfWork, *model.Staff, auth.JWTService) {
	t.Helper()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("s3cretpass")
	require.NoError(t, err)

	name, _ := model.NewFullName("Ana", "", "Reyes", "")
	member, err := model.NewStaff(name, "ana@clinic.ph", "+639171234567", model.RoleNurse, hash, now.Add(-time.Hour))
	require.NoError(t, err)

	uow := mocks.NewUnitOfWork()
	jwtSvc := auth.NewJWTService("secret", "clinic-api", time.Hour)
	return NewService(uow, jwtSvc, hasher, clock), uow, member, jwtSvc
}

func TestLogin(t *testing.T) {
	svc, uow, member, jwtSvc := setup(t)
	uow.Staff.On("GetByEmail", mock.Anything, model.Email("ana@clinic.ph")).Return(member, nil)
	uow.Staff.On("Update", mock.Anything, member).Return(nil)

	out, err := svc.Login(context.Background(), LoginCommand{Email: " ANA@clinic.ph", Password: "s3cretpass"})

	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)
	require.NotNil(t, member.LastLoginAt)
	assert.Equal(t, now, *member.LastLoginAt)

	principal, err := jwtSvc.ValidateToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, member.ID, principal.StaffID)
	assert.Equal(t, model.RoleNurse, principal.Role)
}

func TestLoginFailures(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		svc, uow, _, _ := setup(t)
		uow.Staff.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, apperrors.NotFound("staff", nil))

		_, err := svc.Login(context.Background(), LoginCommand{Email: "who@clinic.ph", Password: "s3cretpass"})
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, uow, member, _ := setup(t)
		uow.Staff.On("GetByEmail", mock.Anything, mock.Anything).Return(member, nil)

		_, err := svc.Login(context.Background(), LoginCommand{Email: "ana@clinic.ph", Password: "wrongpass1"})
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
		uow.Staff.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("inactive account", func(t *testing.T) {
		svc, uow, member, _ := setup(t)
		require.NoError(t, member.Deactivate(now))
		uow.Staff.On("GetByEmail", mock.Anything, mock.Anything).Return(member, nil)

		_, err := svc.Login(context.Background(), LoginCommand{Email: "ana@clinic.ph", Password: "s3cretpass"})
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
		assert.ErrorIs(t, err, model.ErrAccountInactive)
	})
}

func TestCurrent(t *testing.T) {
	svc, uow, member, _ := setup(t)
	uow.Staff.On("Get", mock.Anything, member.ID).Return(member, nil)

	out, err := svc.Current(context.Background(), CurrentStaffQuery{StaffID: member.ID})

	require.NoError(t, err)
	assert.Equal(t, "Ana Reyes", out.DisplayName)
	assert.Equal(t, "nurse", out.Role)
}
