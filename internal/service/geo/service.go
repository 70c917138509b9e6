// Package geo exposes the PSGC lookups through the mediator.
package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jwalitptl/clinic-api/internal/geo"
	"github.com/jwalitptl/clinic-api/internal/service"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type ListProvincesQuery struct{}

type ListCitiesQuery struct {
	ProvinceCode string `validate:"required,numeric"`
}

type ListBarangaysQuery struct {
	CityCode string `validate:"required,numeric"`
}

type Service struct {
	client geo.Client
}

func NewService(client geo.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Register(m *mediator.Mediator) {
	mediator.Register(m, s.Provinces)
	mediator.Register(m, s.Cities)
	mediator.Register(m, s.Barangays)
}

func (s *Service) Provinces(ctx context.Context, _ ListProvincesQuery) ([]geo.Area, error) {
	areas, err := s.client.Provinces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list provinces: %w", classify("province", err))
	}
	return areas, nil
}

func (s *Service) Cities(ctx context.Context, q ListCitiesQuery) ([]geo.Area, error) {
	areas, err := s.client.CitiesMunicipalities(ctx, q.ProvinceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", classify("province", err))
	}
	return areas, nil
}

func (s *Service) Barangays(ctx context.Context, q ListBarangaysQuery) ([]geo.Area, error) {
	areas, err := s.client.Barangays(ctx, q.CityCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list barangays: %w", classify("city", err))
	}
	return areas, nil
}

// classify maps client failures onto API errors; anything else stays internal
func classify(resource string, err error) error {
	if errors.Is(err, geo.ErrInvalidCode) {
		return service.Invalid("code", err)
	}
	var status *geo.StatusError
	if errors.As(err, &status) && status.StatusCode == http.StatusNotFound {
		return apperrors.NotFound(resource, err)
	}
	return err
}
