// AngelaMos | 2026
// service.go

package region

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateRegionRequest) (*Region, error) {
	region := &Region{Name: strings.TrimSpace(req.Name)}

	if err := s.repo.Create(ctx, region); err != nil {
		return nil, err
	}

	return region, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Region, error) {
	region, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return region, nil
}

func (s *Service) Update(
	ctx context.Context,
	id int64,
	req UpdateRegionRequest,
) (*Region, error) {
	region := &Region{ID: id, Name: strings.TrimSpace(req.Name)}

	if err := s.repo.Update(ctx, region); err != nil {
		return nil, notFound(err)
	}

	return region, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return notFound(s.repo.Delete(ctx, id))
}

func (s *Service) List(
	ctx context.Context,
	params ListRegionsParams,
) ([]Region, int, error) {
	params.Normalize()
	return s.repo.List(ctx, params)
}

func notFound(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: %w", err, core.NotFoundError("region"))
	}
	return err
}
