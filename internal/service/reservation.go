package service

import (
	"context"
	"fmt"
	"time"

	"communityshare-backend/internal/domain"
	"communityshare-backend/internal/logger"
	"communityshare-backend/internal/pricing"
	"communityshare-backend/internal/repository"
)

type reservationService struct {
	reservationRepo repository.ReservationRepository
	resourceRepo    repository.ResourceRepository
	userRepo        repository.UserRepository
	emailSvc        EmailService
	noteRepo        repository.NotificationRepository
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	resourceRepo repository.ResourceRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	noteRepo repository.NotificationRepository,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		resourceRepo:    resourceRepo,
		userRepo:        userRepo,
		emailSvc:        emailSvc,
		noteRepo:        noteRepo,
	}
}

func (s *reservationService) Create(ctx context.Context, in CreateReservationInput, now time.Time) (*domain.Reservation, error) {
	if !in.EndsAt.After(in.StartsAt) {
		// Upstream validation should never let this through.
		panic(fmt.Sprintf("reservation: ends_at %s not after starts_at %s", in.EndsAt, in.StartsAt))
	}

	res, err := s.resourceRepo.GetByID(ctx, in.ResourceID)
	if err != nil {
		return nil, err
	}
	if !res.CanBeReserved() {
		return nil, domain.Rejectf(domain.RejectResourceNotReservable, "resource %q is %s", res.Name, res.Status)
	}
	if !in.StartsAt.After(now) {
		return nil, domain.Rejectf(domain.RejectStartNotInFuture, "booking must start in the future")
	}

	durationDays := pricing.InclusiveDaySpan(in.StartsAt, in.EndsAt)
	if !res.BookingDurationAllowed(durationDays) {
		return nil, domain.Rejectf(domain.RejectDurationPolicy, "%d-day booking exceeds the limit for %q", durationDays, res.Name)
	}
	if res.AdvanceBookingDays != nil {
		if ahead := pricing.DaysAhead(now, in.StartsAt); ahead > int(*res.AdvanceBookingDays) {
			return nil, domain.Rejectf(domain.RejectAdvanceBookingPolicy, "booking starts %d days ahead, cap is %d", ahead, *res.AdvanceBookingDays)
		}
	}

	rsv := &domain.Reservation{
		ResourceID: in.ResourceID,
		UserID:     in.UserID,
		StartsAt:   in.StartsAt,
		EndsAt:     in.EndsAt,
		Notes:      in.Notes,
		Status:     domain.ReservationStatusPending,
	}
	if !res.RequiresApproval {
		rsv.Status = domain.ReservationStatusConfirmed
		confirmedAt := now
		rsv.ConfirmedAt = &confirmedAt
	}

	// Availability is enforced inside CreateLocked under the per-resource
	// lock; checking it out here would leave a race window.
	if err := s.reservationRepo.CreateLocked(ctx, rsv); err != nil {
		return nil, err
	}

	logger.Info("reservation created",
		"reservation_id", rsv.ID, "resource_id", res.ID, "user_id", in.UserID, "status", rsv.Status)
	s.notifyReservationCreated(ctx, rsv, res)
	return rsv, nil
}

func (s *reservationService) Confirm(ctx context.Context, reservationID, actorID int32, now time.Time) (*domain.Reservation, error) {
	rsv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !rsv.Status.CanConfirm() {
		return nil, domain.Rejectf(domain.RejectInvalidTransition, "cannot confirm a %s reservation", rsv.Status)
	}

	rsv.Status = domain.ReservationStatusConfirmed
	rsv.ConfirmedAt = &now
	rsv.ConfirmedBy = &actorID
	if err := s.reservationRepo.Update(ctx, rsv); err != nil {
		return nil, err
	}

	logger.Info("reservation confirmed", "reservation_id", rsv.ID, "confirmed_by", actorID)
	if res, err := s.resourceRepo.GetByID(ctx, rsv.ResourceID); err == nil {
		if member, err := s.userRepo.GetByID(ctx, rsv.UserID); err == nil {
			_ = s.emailSvc.SendReservationConfirmed(ctx, member.Email, member.Name, res.Name, rsv.StartsAt)
			_ = s.noteRepo.Create(ctx, &domain.Notification{
				UserID:  member.ID,
				Title:   "Reservation Confirmed",
				Message: fmt.Sprintf("Your reservation for %s on %s was confirmed", res.Name, rsv.StartsAt.Format("2006-01-02 15:04")),
				Attributes: map[string]string{
					"type":           "RESERVATION_CONFIRMED",
					"reservation_id": fmt.Sprintf("%d", rsv.ID),
				},
			})
		}
	}
	return rsv, nil
}

func (s *reservationService) Cancel(ctx context.Context, reservationID, actorID int32, reason string, now time.Time) (*domain.Reservation, error) {
	rsv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !rsv.Status.CanCancel() {
		return nil, domain.Rejectf(domain.RejectInvalidTransition, "cannot cancel a %s reservation", rsv.Status)
	}
	if !rsv.StartsAt.After(now) {
		return nil, domain.Rejectf(domain.RejectInvalidTransition, "booking window already started")
	}

	rsv.Status = domain.ReservationStatusCancelled
	rsv.CancelledAt = &now
	rsv.CancelledBy = &actorID
	rsv.CancellationReason = reason
	if err := s.reservationRepo.Update(ctx, rsv); err != nil {
		return nil, err
	}

	logger.Info("reservation cancelled", "reservation_id", rsv.ID, "cancelled_by", actorID, "reason", reason)
	if res, err := s.resourceRepo.GetByID(ctx, rsv.ResourceID); err == nil {
		if member, err := s.userRepo.GetByID(ctx, rsv.UserID); err == nil {
			_ = s.emailSvc.SendReservationCancelled(ctx, member.Email, member.Name, res.Name, reason)
			_ = s.noteRepo.Create(ctx, &domain.Notification{
				UserID:  member.ID,
				Title:   "Reservation Cancelled",
				Message: fmt.Sprintf("Your reservation for %s was cancelled", res.Name),
				Attributes: map[string]string{
					"type":           "RESERVATION_CANCELLED",
					"reservation_id": fmt.Sprintf("%d", rsv.ID),
				},
			})
		}
	}
	return rsv, nil
}

func (s *reservationService) Get(ctx context.Context, reservationID int32) (*domain.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, reservationID)
}

func (s *reservationService) ListByUser(ctx context.Context, userID int32, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return s.reservationRepo.ListByUser(ctx, userID, status, page, pageSize)
}

func (s *reservationService) notifyReservationCreated(ctx context.Context, rsv *domain.Reservation, res *domain.Resource) {
	member, err := s.userRepo.GetByID(ctx, rsv.UserID)
	if err != nil {
		return
	}
	pending := rsv.Status == domain.ReservationStatusPending
	_ = s.emailSvc.SendReservationCreated(ctx, member.Email, member.Name, res.Name, rsv.StartsAt, rsv.EndsAt, pending)

	title := "Reservation Confirmed"
	message := fmt.Sprintf("Your reservation for %s starting %s is confirmed", res.Name, rsv.StartsAt.Format("2006-01-02 15:04"))
	if pending {
		title = "Reservation Requested"
		message = fmt.Sprintf("Your reservation for %s starting %s is awaiting approval", res.Name, rsv.StartsAt.Format("2006-01-02 15:04"))
	}
	_ = s.noteRepo.Create(ctx, &domain.Notification{
		UserID:  member.ID,
		Title:   title,
		Message: message,
		Attributes: map[string]string{
			"type":           "RESERVATION_CREATED",
			"reservation_id": fmt.Sprintf("%d", rsv.ID),
		},
	})
}
