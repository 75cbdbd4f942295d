package service

import (
	"context"
	"time"

	"communityshare-backend/internal/domain"
	"communityshare-backend/internal/repository"
)

type availabilityService struct {
	reservationRepo repository.ReservationRepository
}

func NewAvailabilityService(reservationRepo repository.ReservationRepository) AvailabilityService {
	return &availabilityService{reservationRepo: reservationRepo}
}

func (s *availabilityService) IsSlotAvailable(ctx context.Context, resourceID int32, startsAt, endsAt time.Time, excludeReservationID int32) (bool, error) {
	if !endsAt.After(startsAt) {
		panic("availability: ends_at must be after starts_at")
	}
	overlaps, err := s.reservationRepo.HasBlockingOverlap(ctx, resourceID, startsAt, endsAt, excludeReservationID)
	if err != nil {
		return false, err
	}
	return !overlaps, nil
}

func (s *availabilityService) BlockingForResource(ctx context.Context, resourceID int32, rangeStart, rangeEnd time.Time) ([]domain.Reservation, error) {
	return s.reservationRepo.ListBlockingInRange(ctx, resourceID, rangeStart, rangeEnd)
}
