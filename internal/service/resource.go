package service

import (
	"context"

	"communityshare-backend/internal/domain"
	"communityshare-backend/internal/logger"
	"communityshare-backend/internal/repository"
)

type resourceService struct {
	resourceRepo repository.ResourceRepository
}

func NewResourceService(resourceRepo repository.ResourceRepository) ResourceService {
	return &resourceService{resourceRepo: resourceRepo}
}

func (s *resourceService) AddResource(ctx context.Context, res *domain.Resource) error {
	if err := res.Validate(); err != nil {
		return err
	}
	if res.Status == "" {
		res.Status = domain.ResourceStatusActive
	}
	if err := s.resourceRepo.Create(ctx, res); err != nil {
		return err
	}
	logger.Info("resource added", "resource_id", res.ID, "name", res.Name, "type", res.Type)
	return nil
}

func (s *resourceService) UpdateResource(ctx context.Context, res *domain.Resource) error {
	if err := res.Validate(); err != nil {
		return err
	}
	return s.resourceRepo.Update(ctx, res)
}

func (s *resourceService) Activate(ctx context.Context, resourceID int32) (*domain.Resource, error) {
	return s.setStatus(ctx, resourceID, domain.ResourceStatusActive)
}

func (s *resourceService) Deactivate(ctx context.Context, resourceID int32) (*domain.Resource, error) {
	return s.setStatus(ctx, resourceID, domain.ResourceStatusInactive)
}

func (s *resourceService) MarkMaintenance(ctx context.Context, resourceID int32) (*domain.Resource, error) {
	return s.setStatus(ctx, resourceID, domain.ResourceStatusMaintenance)
}

func (s *resourceService) setStatus(ctx context.Context, resourceID int32, status domain.ResourceStatus) (*domain.Resource, error) {
	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if res.Status == status {
		return res, nil
	}
	res.Status = status
	if err := s.resourceRepo.Update(ctx, res); err != nil {
		return nil, err
	}
	logger.Info("resource status changed", "resource_id", res.ID, "status", status)
	return res, nil
}

func (s *resourceService) GetResource(ctx context.Context, resourceID int32) (*domain.Resource, error) {
	return s.resourceRepo.GetByID(ctx, resourceID)
}

func (s *resourceService) ListReservable(ctx context.Context) ([]domain.Resource, error) {
	return s.resourceRepo.ListByStatus(ctx, domain.ResourceStatusActive)
}
