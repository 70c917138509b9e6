package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CurrentStaffQuery loads the profile behind a token
type CurrentStaffQuery struct {
	StaffID uuid.UUID `validate:"required"`
}

type Service struct {
	uow    repository.UnitOfWork
	jwtSvc auth.JWTService
	hasher security.PasswordHasher
	now    service.Clock
}

func NewService(uow repository.UnitOfWork, jwtSvc auth.JWTService, hasher security.PasswordHasher, now service.Clock) *Service {
	if now == nil {
		now = service.SystemClock
	}
	return &Service{uow: uow, jwtSvc: jwtSvc, hasher: hasher, now: now}
}

func (s *Service) Register(m *mediator.Mediator) {
	mediator.Register(m, s.Login)
	mediator.Register(m, s.Current)
}

// Login never says whether the email exists
func (s *Service) Login(ctx context.Context, cmd LoginCommand) (model.TokenResponse, error) {
	email, err := model.NewEmail(cmd.Email)
	if err != nil {
		return model.TokenResponse{}, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}

	var member *model.Staff
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		member, err = repos.Staff.GetByEmail(ctx, email)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthorized(model.ErrInvalidCredentials)
		}
		if err != nil {
			return err
		}

		if err := s.hasher.Compare(member.PasswordHash, cmd.Password); err != nil {
			if errors.Is(err, security.ErrPasswordMismatch) {
				return apperrors.Unauthorized(model.ErrInvalidCredentials)
			}
			return err
		}
		if !member.IsActive() {
			return apperrors.Unauthorized(model.ErrAccountInactive)
		}

		member.RecordLogin(s.now())
		return repos.Staff.Update(ctx, member)
	})
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("failed to log in: %w", err)
	}

	principal := model.Principal{StaffID: member.ID, Email: member.Email.String(), Role: member.Role}
	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(principal)
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Staff:       principal,
	}, nil
}

func (s *Service) Current(ctx context.Context, q CurrentStaffQuery) (dto.StaffDTO, error) {
	var out dto.StaffDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		member, err := repos.Staff.Get(ctx, q.StaffID)
		if err != nil {
			return err
		}
		if !member.IsActive() {
			return apperrors.Unauthorized(model.ErrAccountInactive)
		}
		out = dto.Staff(member)
		return nil
	})
	if err != nil {
		return dto.StaffDTO{}, fmt.Errorf("failed to load current staff: %w", err)
	}
	return out, nil
}
