package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"communityshare-backend/internal/domain"
	"communityshare-backend/internal/logger"
	"communityshare-backend/internal/pricing"
	"communityshare-backend/internal/repository"
)

// checkOutGrace is how early a member may check out before the booked window
// opens.
const checkOutGrace = 30 * time.Minute

type usageService struct {
	usageRepo       repository.UsageLogRepository
	reservationRepo repository.ReservationRepository
	resourceRepo    repository.ResourceRepository
	userRepo        repository.UserRepository
	emailSvc        EmailService
	noteRepo        repository.NotificationRepository
}

func NewUsageService(
	usageRepo repository.UsageLogRepository,
	reservationRepo repository.ReservationRepository,
	resourceRepo repository.ResourceRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	noteRepo repository.NotificationRepository,
) UsageService {
	return &usageService{
		usageRepo:       usageRepo,
		reservationRepo: reservationRepo,
		resourceRepo:    resourceRepo,
		userRepo:        userRepo,
		emailSvc:        emailSvc,
		noteRepo:        noteRepo,
	}
}

func (s *usageService) CheckOut(ctx context.Context, in CheckOutInput, now time.Time) (*domain.UsageLog, error) {
	rsv, err := s.reservationRepo.GetByID(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	if !rsv.Status.CanCheckOut() {
		return nil, domain.Rejectf(domain.RejectInvalidTransition, "cannot check out a %s reservation", rsv.Status)
	}

	if _, err := s.usageRepo.GetByReservation(ctx, in.ReservationID); err == nil {
		return nil, domain.Rejectf(domain.RejectUsageLogExists, "reservation %d already has a usage log", in.ReservationID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	windowOpens := rsv.StartsAt.Add(-checkOutGrace)
	if now.Before(windowOpens) || !now.Before(rsv.EndsAt) {
		return nil, domain.Rejectf(domain.RejectCheckOutWindow,
			"check-out allowed between %s and %s", windowOpens.Format(time.RFC3339), rsv.EndsAt.Format(time.RFC3339))
	}

	log := &domain.UsageLog{
		ReservationID:  rsv.ID,
		ResourceID:     rsv.ResourceID,
		UserID:         rsv.UserID,
		Status:         domain.UsageLogStatusCheckedOut,
		CheckedOutAt:   now,
		StartReading:   in.StartReading,
		StartPhotoPath: in.StartPhotoPath,
		StartNotes:     in.StartNotes,
	}
	if err := s.usageRepo.CreateWithCheckOut(ctx, log, rsv); err != nil {
		return nil, err
	}

	logger.Info("usage checked out", "usage_log_id", log.ID, "reservation_id", rsv.ID, "actor_id", in.ActorID)
	return log, nil
}

func (s *usageService) CheckIn(ctx context.Context, in CheckInInput) (*domain.UsageLog, error) {
	log, err := s.usageRepo.GetByID(ctx, in.UsageLogID)
	if err != nil {
		return nil, err
	}
	if !log.Status.CanCheckIn() {
		return nil, domain.Rejectf(domain.RejectInvalidTransition, "cannot check in a %s usage log", log.Status)
	}
	if !in.CheckedInAt.After(log.CheckedOutAt) {
		return nil, domain.Rejectf(domain.RejectCheckInOrder,
			"check-in time %s is not after check-out time %s",
			in.CheckedInAt.Format(time.RFC3339), log.CheckedOutAt.Format(time.RFC3339))
	}
	if log.StartReading != nil && in.EndReading != nil && in.EndReading.LessThan(*log.StartReading) {
		return nil, domain.Rejectf(domain.RejectReadingOrder,
			"end reading %s is below start reading %s", in.EndReading, log.StartReading)
	}

	rsv, err := s.reservationRepo.GetByID(ctx, log.ReservationID)
	if err != nil {
		return nil, err
	}
	res, err := s.resourceRepo.GetByID(ctx, log.ResourceID)
	if err != nil {
		return nil, err
	}

	checkedInAt := in.CheckedInAt
	log.CheckedInAt = &checkedInAt
	log.EndReading = in.EndReading
	log.EndPhotoPath = in.EndPhotoPath
	log.EndNotes = in.EndNotes

	// Duration is always derived from the timestamps; distance only when both
	// meter readings were taken.
	durationHours := pricing.HoursBetween(log.CheckedOutAt, checkedInAt)
	log.DurationHours = &durationHours
	if log.StartReading != nil && log.EndReading != nil {
		distance := log.EndReading.Sub(*log.StartReading)
		log.DistanceUnits = &distance
	}
	cost := pricing.UsageCost(res, durationHours, log.DistanceUnits)
	log.CalculatedCost = &cost
	log.Status = domain.UsageLogStatusCompleted

	if err := s.usageRepo.UpdateWithCheckIn(ctx, log, rsv); err != nil {
		return nil, err
	}

	logger.Info("usage checked in",
		"usage_log_id", log.ID, "duration_hours", durationHours, "calculated_cost", cost, "actor_id", in.ActorID)
	return log, nil
}

func (s *usageService) Verify(ctx context.Context, usageLogID, actorID int32, adminNotes string, now time.Time) (*domain.UsageLog, error) {
	log, err := s.usageRepo.GetByID(ctx, usageLogID)
	if err != nil {
		return nil, err
	}
	if !log.Status.CanVerify() {
		return nil, domain.Rejectf(domain.RejectInvalidTransition, "cannot verify a %s usage log", log.Status)
	}

	log.Status = domain.UsageLogStatusVerified
	log.VerifiedBy = &actorID
	log.VerifiedAt = &now
	if adminNotes != "" {
		log.AdminNotes = adminNotes
	}
	if err := s.usageRepo.Update(ctx, log); err != nil {
		return nil, err
	}

	logger.Info("usage verified", "usage_log_id", log.ID, "verified_by", actorID)
	s.notifyUsageReview(ctx, log, false)
	return log, nil
}

func (s *usageService) Dispute(ctx context.Context, usageLogID, actorID int32, adminNotes string, now time.Time) (*domain.UsageLog, error) {
	log, err := s.usageRepo.GetByID(ctx, usageLogID)
	if err != nil {
		return nil, err
	}
	if !log.Status.CanDispute() {
		return nil, domain.Rejectf(domain.RejectInvalidTransition, "cannot dispute a %s usage log", log.Status)
	}

	log.Status = domain.UsageLogStatusDisputed
	log.AdminNotes = adminNotes
	if err := s.usageRepo.Update(ctx, log); err != nil {
		return nil, err
	}

	logger.Info("usage disputed", "usage_log_id", log.ID, "actor_id", actorID)
	s.notifyUsageReview(ctx, log, true)
	return log, nil
}

func (s *usageService) Get(ctx context.Context, usageLogID int32) (*domain.UsageLog, error) {
	return s.usageRepo.GetByID(ctx, usageLogID)
}

func (s *usageService) ListByUser(ctx context.Context, userID, page, pageSize int32) ([]domain.UsageLog, int32, error) {
	return s.usageRepo.ListByUser(ctx, userID, page, pageSize)
}

func (s *usageService) notifyUsageReview(ctx context.Context, log *domain.UsageLog, disputed bool) {
	member, err := s.userRepo.GetByID(ctx, log.UserID)
	if err != nil {
		return
	}
	res, err := s.resourceRepo.GetByID(ctx, log.ResourceID)
	if err != nil {
		return
	}

	if disputed {
		_ = s.emailSvc.SendUsageDisputed(ctx, member.Email, member.Name, res.Name, log.AdminNotes)
		_ = s.noteRepo.Create(ctx, &domain.Notification{
			UserID:  member.ID,
			Title:   "Usage Disputed",
			Message: fmt.Sprintf("Your usage of %s is under review", res.Name),
			Attributes: map[string]string{
				"type":         "USAGE_DISPUTED",
				"usage_log_id": fmt.Sprintf("%d", log.ID),
			},
		})
		return
	}

	_ = s.emailSvc.SendUsageVerified(ctx, member.Email, member.Name, res.Name)
	_ = s.noteRepo.Create(ctx, &domain.Notification{
		UserID:  member.ID,
		Title:   "Usage Verified",
		Message: fmt.Sprintf("Your usage of %s was verified", res.Name),
		Attributes: map[string]string{
			"type":         "USAGE_VERIFIED",
			"usage_log_id": fmt.Sprintf("%d", log.ID),
		},
	})
}
