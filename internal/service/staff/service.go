package staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/dto"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

type Service struct {
	uow    repository.UnitOfWork
	hasher security.PasswordHasher
	now    service.Clock
}

func NewService(uow repository.UnitOfWork, hasher security.PasswordHasher, now service.Clock) *Service {
	if now == nil {
		now = service.SystemClock
	}
	return &Service{uow: uow, hasher: hasher, now: now}
}

func (s *Service) Register(m *mediator.Mediator) {
	mediator.Register(m, s.Create)
	mediator.Register(m, s.Update)
	mediator.Register(m, s.ChangeRole)
	mediator.Register(m, s.ChangePassword)
	mediator.Register(m, s.Deactivate)
	mediator.Register(m, s.Activate)
	mediator.Register(m, s.Delete)
	mediator.Register(m, s.Get)
	mediator.Register(m, s.List)
}

func (s *Service) Create(ctx context.Context, cmd CreateStaffCommand) (dto.StaffDTO, error) {
	name, contact, fields := cmd.parse()
	if err := fields.Err(); err != nil {
		return dto.StaffDTO{}, err
	}
	hash, err := s.hash(cmd.Password)
	if err != nil {
		return dto.StaffDTO{}, err
	}
	member, err := model.NewStaff(name, contact.Email, contact.Phone, cmd.Role, hash, s.now())
	if err != nil {
		return dto.StaffDTO{}, service.Rule(err)
	}

	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Staff.Create(ctx, member)
	})
	if err != nil {
		return dto.StaffDTO{}, fmt.Errorf("failed to create staff: %w", err)
	}
	return dto.Staff(member), nil
}

func (s *Service) Update(ctx context.Context, cmd UpdateStaffCommand) (dto.StaffDTO, error) {
	name, contact, fields := cmd.parse()
	if err := fields.Err(); err != nil {
		return dto.StaffDTO{}, err
	}
	return s.mutate(ctx, cmd.ID, "update", func(member *model.Staff, now time.Time) error {
		member.UpdateName(name, now)
		member.UpdateContactInformation(contact.Email, contact.Phone, now)
		return nil
	})
}

func (s *Service) ChangeRole(ctx context.Context, cmd ChangeStaffRoleCommand) (dto.StaffDTO, error) {
	return s.mutate(ctx, cmd.ID, "change role of", func(member *model.Staff, now time.Time) error {
		return service.Rule(member.ChangeRole(cmd.Role, now))
	})
}

func (s *Service) ChangePassword(ctx context.Context, cmd ChangeStaffPasswordCommand) (dto.StaffDTO, error) {
	hash, err := s.hash(cmd.Password)
	if err != nil {
		return dto.StaffDTO{}, err
	}
	return s.mutate(ctx, cmd.ID, "change password of", func(member *model.Staff, now time.Time) error {
		member.SetPasswordHash(hash, now)
		return nil
	})
}

func (s *Service) Deactivate(ctx context.Context, cmd DeactivateStaffCommand) (dto.StaffDTO, error) {
	if cmd.ActorID == cmd.ID {
		return dto.StaffDTO{}, apperrors.BusinessRule("staff cannot deactivate their own account", nil)
	}
	return s.mutate(ctx, cmd.ID, "deactivate", func(member *model.Staff, now time.Time) error {
		return service.Rule(member.Deactivate(now))
	})
}

func (s *Service) Activate(ctx context.Context, cmd ActivateStaffCommand) (dto.StaffDTO, error) {
	return s.mutate(ctx, cmd.ID, "activate", func(member *model.Staff, now time.Time) error {
		return service.Rule(member.Activate(now))
	})
}

func (s *Service) Delete(ctx context.Context, cmd DeleteStaffCommand) (struct{}, error) {
	if cmd.ActorID == cmd.ID {
		return struct{}{}, apperrors.BusinessRule("staff cannot delete their own account", nil)
	}
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Staff.Get(ctx, cmd.ID); err != nil {
			return err
		}
		return repos.Staff.Delete(ctx, cmd.ID, s.now())
	})
	if err != nil {
		return struct{}{}, fmt.Errorf("failed to delete staff: %w", err)
	}
	return struct{}{}, nil
}

func (s *Service) Get(ctx context.Context, q GetStaffQuery) (dto.StaffDTO, error) {
	var out dto.StaffDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		member, err := repos.Staff.Get(ctx, q.ID)
		if err != nil {
			return err
		}
		out = dto.Staff(member)
		return nil
	})
	if err != nil {
		return dto.StaffDTO{}, fmt.Errorf("failed to get staff: %w", err)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, q ListStaffQuery) (dto.Page[dto.StaffDTO], error) {
	page := q.Pagination()
	filters := model.StaffFilters{Role: q.Role, Status: q.Status, Search: q.Search}

	var out dto.Page[dto.StaffDTO]
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		members, total, err := repos.Staff.List(ctx, filters, page)
		if err != nil {
			return err
		}
		out = dto.NewPage(members, page, total, dto.Staff)
		return nil
	})
	if err != nil {
		return dto.Page[dto.StaffDTO]{}, fmt.Errorf("failed to list staff: %w", err)
	}
	return out, nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, security.ErrWeakPassword) {
		return "", service.Invalid("password", err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, op string, change func(*model.Staff, time.Time) error) (dto.StaffDTO, error) {
	var out dto.StaffDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		member, err := repos.Staff.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := change(member, s.now()); err != nil {
			return err
		}
		if err := repos.Staff.Update(ctx, member); err != nil {
			return err
		}
		out = dto.Staff(member)
		return nil
	})
	if err != nil {
		return dto.StaffDTO{}, fmt.Errorf("failed to %s staff: %w", op, err)
	}
	return out, nil
}
