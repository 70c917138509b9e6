package billing

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
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

var ErrAppointmentMismatch = errors.New("appointment belongs to a different patient")

type Service struct {
	uow repository.UnitOfWork
	now service.Clock
}

func NewService(uow repository.UnitOfWork, now service.Clock) *Service {
	if now == nil {
		now = service.SystemClock
	}
	return &Service{uow: uow, now: now}
}

func (s *Service) Register(m *mediator.Mediator) {
	mediator.Register(m, s.Create)
	mediator.Register(m, s.AddItem)
	mediator.Register(m, s.RemoveItem)
	mediator.Register(m, s.ApplyDiscount)
	mediator.Register(m, s.Issue)
	mediator.Register(m, s.RecordPayment)
	mediator.Register(m, s.SubmitClaim)
	mediator.Register(m, s.ApproveClaim)
	mediator.Register(m, s.RejectClaim)
	mediator.Register(m, s.Cancel)
	mediator.Register(m, s.Delete)
	mediator.Register(m, s.Get)
	mediator.Register(m, s.List)
}

func (s *Service) Create(ctx context.Context, cmd CreateBillCommand) (dto.BillDTO, error) {
	now := s.now()
	var due *time.Time
	if !cmd.DueDate.IsZero() {
		due = &cmd.DueDate.Time
	}
	bill := model.NewBill(cmd.PatientID, cmd.AppointmentID, due, now)
	for i, item := range cmd.Items {
		if _, err := bill.AddItem(item.Description, item.Quantity, item.UnitPrice, now); err != nil {
			return dto.BillDTO{}, service.Invalid(fmt.Sprintf("items[%d]", i), err)
		}
	}

	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Patients.Get(ctx, cmd.PatientID); err != nil {
			return err
		}
		if cmd.AppointmentID != nil {
			a, err := repos.Appointments.Get(ctx, *cmd.AppointmentID)
			if err != nil {
				return err
			}
			if a.PatientID != cmd.PatientID {
				return service.Rule(ErrAppointmentMismatch)
			}
		}
		return repos.Bills.Create(ctx, bill)
	})
	if err != nil {
		return dto.BillDTO{}, fmt.Errorf("failed to create bill: %w", err)
	}
	return dto.Bill(bill), nil
}

func (s *Service) AddItem(ctx context.Context, cmd AddBillItemCommand) (dto.BillDTO, error) {
	return s.mutate(ctx, cmd.BillID, "add item to", func(b *model.Bill, now time.Time) (notice, error) {
		_, err := b.AddItem(cmd.Description, cmd.Quantity, cmd.UnitPrice, now)
		return notice{}, err
	})
}

func (s *Service) RemoveItem(ctx context.Context, cmd RemoveBillItemCommand) (dto.BillDTO, error) {
	return s.mutate(ctx, cmd.BillID, "remove item from", func(b *model.Bill, now time.Time) (notice, error) {
		return notice{}, b.RemoveItem(cmd.ItemID, now)
	})
}

// ApplyDiscount leaves the stored bill untouched when the discount is refused
func (s *Service) ApplyDiscount(ctx context.Context, cmd ApplyDiscountCommand) (dto.BillDTO, error) {
	return s.mutate(ctx, cmd.BillID, "apply discount to", func(b *model.Bill, now time.Time) (notice, error) {
		return notice{}, b.ApplyDiscount(cmd.Amount, now)
	})
}

func (s *Service) Issue(ctx context.Context, cmd IssueBillCommand) (dto.BillDTO, error) {
	return s.mutate(ctx, cmd.BillID, "issue", func(b *model.Bill, now time.Time) (notice, error) {
		if err := b.Issue(now); err != nil {
			return notice{}, err
		}
		return notice{event: model.EventBillIssued}, nil
	})
}

func (s *Service) RecordPayment(ctx context.Context, cmd RecordPaymentCommand) (dto.BillDTO, error) {
	return s.mutate(ctx, cmd.BillID, "record payment on", func(b *model.Bill, now time.Time) (notice, error) {
		if _, err := b.RecordPayment(cmd.Amount, cmd.Method, cmd.Reference, now); err != nil {
			return notice{}, err
		}
		return notice{event: model.EventBillPaymentRecorded, amount: cmd.Amount}, nil
	})
}

func (s *Service) SubmitClaim(ctx context.Context, cmd SubmitClaimCommand) (dto.BillDTO, error) {
	return s.mutate(ctx, cmd.BillID, "submit claim on", func(b *model.Bill, now time.Time) (notice, error) {
		_, err := b.SubmitClaim(cmd.Provider, cmd.PolicyNumber, cmd.Amount, now)
		return notice{}, err
	})
}

func (s *Service) ApproveClaim(ctx context.Context, cmd ApproveClaimCommand) (dto.BillDTO, error) {
	return s.mutate(ctx, cmd.BillID, "approve claim on", func(b *model.Bill, now time.Time) (notice, error) {
		if err := b.ApproveClaim(cmd.ClaimID, cmd.ApprovedAmount, now); err != nil {
			return notice{}, err
		}
		return notice{event: model.EventBillPaymentRecorded, amount: cmd.ApprovedAmount}, nil
	})
}

func (s *Service) RejectClaim(ctx context.Context, cmd RejectClaimCommand) (dto.BillDTO, error) {
	return s.mutate(ctx, cmd.BillID, "reject claim on", func(b *model.Bill, now time.Time) (notice, error) {
		return notice{}, b.RejectClaim(cmd.ClaimID, cmd.Reason, now)
	})
}

func (s *Service) Cancel(ctx context.Context, cmd CancelBillCommand) (dto.BillDTO, error) {
	return s.mutate(ctx, cmd.BillID, "cancel", func(b *model.Bill, now time.Time) (notice, error) {
		return notice{}, b.Cancel(now)
	})
}

func (s *Service) Delete(ctx context.Context, cmd DeleteBillCommand) (struct{}, error) {
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		bill, err := repos.Bills.Get(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if err := bill.CanDelete(); err != nil {
			return service.Rule(err)
		}
		return repos.Bills.Delete(ctx, bill.ID, s.now())
	})
	if err != nil {
		return struct{}{}, fmt.Errorf("failed to delete bill: %w", err)
	}
	return struct{}{}, nil
}

func (s *Service) Get(ctx context.Context, q GetBillQuery) (dto.BillDTO, error) {
	var out dto.BillDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		bill, err := repos.Bills.Get(ctx, q.ID)
		if err != nil {
			return err
		}
		out = dto.Bill(bill)
		return nil
	})
	if err != nil {
		return dto.BillDTO{}, fmt.Errorf("failed to get bill: %w", err)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, q ListBillsQuery) (dto.Page[dto.BillDTO], error) {
	page := q.Pagination()
	var out dto.Page[dto.BillDTO]
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		bills, total, err := repos.Bills.List(ctx, model.BillFilters{PatientID: q.PatientID, Status: q.Status}, page)
		if err != nil {
			return err
		}
		out = dto.NewPage(bills, page, total, dto.Bill)
		return nil
	})
	if err != nil {
		return dto.Page[dto.BillDTO]{}, fmt.Errorf("failed to list bills: %w", err)
	}
	return out, nil
}

// notice names the event a change publishes; an empty event publishes nothing
type notice struct {
	event  string
	amount model.Money
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, op string, change func(*model.Bill, time.Time) (notice, error)) (dto.BillDTO, error) {
	var out dto.BillDTO
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		bill, err := repos.Bills.Get(ctx, id)
		if err != nil {
			return err
		}
		n, err := change(bill, s.now())
		if err != nil {
			return service.Rule(err)
		}
		if err := repos.Bills.Update(ctx, bill); err != nil {
			return err
		}
		if n.event != "" {
			event, err := model.NewOutboxEvent(n.event, bill.ID, model.BillEvent{
				BillID:     bill.ID,
				BillNumber: bill.BillNumber,
				PatientID:  bill.PatientID,
				Total:      bill.Total(),
				Balance:    bill.Balance(),
				Amount:     n.amount,
			}, s.now())
			if err != nil {
				return err
			}
			if err := repos.Outbox.Create(ctx, event); err != nil {
				return err
			}
		}
		out = dto.Bill(bill)
		return nil
	})
	if err != nil {
		return dto.BillDTO{}, fmt.Errorf("failed to %s bill: %w", op, err)
	}
	return out, nil
}
