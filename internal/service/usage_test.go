package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"communityshare-backend/internal/domain"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newUsageFixture() (*MockUsageLogRepo, *MockReservationRepo, *MockResourceRepo, *MockUserRepo, *MockEmailService, *MockNotificationRepo, UsageService) {
	usageRepo := new(MockUsageLogRepo)
	reservationRepo := new(MockReservationRepo)
	resourceRepo := new(MockResourceRepo)
	userRepo := new(MockUserRepo)
	emailSvc := new(MockEmailService)
	noteRepo := new(MockNotificationRepo)
	svc := NewUsageService(usageRepo, reservationRepo, resourceRepo, userRepo, emailSvc, noteRepo)
	return usageRepo, reservationRepo, resourceRepo, userRepo, emailSvc, noteRepo, svc
}

func TestUsageService_CheckOut(t *testing.T) {
	ctx := context.Background()
	startsAt := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	rsv := &domain.Reservation{
		ID:         5,
		ResourceID: 2,
		UserID:     1,
		Status:     domain.ReservationStatusConfirmed,
		StartsAt:   startsAt,
		EndsAt:     startsAt.Add(4 * time.Hour),
	}

	t.Run("Success Within Grace", func(t *testing.T) {
		usageRepo, reservationRepo, _, _, _, _, svc := newUsageFixture()
		reservationRepo.On("GetByID", ctx, rsv.ID).Return(rsv, nil)
		usageRepo.On("GetByReservation", ctx, rsv.ID).Return(nil, domain.ErrNotFound)
		usageRepo.On("CreateWithCheckOut", ctx, mock.AnythingOfType("*domain.UsageLog"), rsv).Return(nil)

		now := startsAt.Add(-15 * time.Minute)
		log, err := svc.CheckOut(ctx, CheckOutInput{ReservationID: rsv.ID, ActorID: 1, StartReading: decPtr("12000")}, now)
		assert.NoError(t, err)
		assert.Equal(t, domain.UsageLogStatusCheckedOut, log.Status)
		assert.Equal(t, now, log.CheckedOutAt)
		assert.Equal(t, rsv.ResourceID, log.ResourceID)
	})

	t.Run("Too Early", func(t *testing.T) {
		usageRepo, reservationRepo, _, _, _, _, svc := newUsageFixture()
		reservationRepo.On("GetByID", ctx, rsv.ID).Return(rsv, nil)
		usageRepo.On("GetByReservation", ctx, rsv.ID).Return(nil, domain.ErrNotFound)

		_, err := svc.CheckOut(ctx, CheckOutInput{ReservationID: rsv.ID, ActorID: 1}, startsAt.Add(-2*time.Hour))
		rej, ok := domain.AsRejection(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectCheckOutWindow, rej.Code)
	})

	t.Run("After Window Ends", func(t *testing.T) {
		usageRepo, reservationRepo, _, _, _, _, svc := newUsageFixture()
		reservationRepo.On("GetByID", ctx, rsv.ID).Return(rsv, nil)
		usageRepo.On("GetByReservation", ctx, rsv.ID).Return(nil, domain.ErrNotFound)

		_, err := svc.CheckOut(ctx, CheckOutInput{ReservationID: rsv.ID, ActorID: 1}, rsv.EndsAt)
		rej, ok := domain.AsRejection(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectCheckOutWindow, rej.Code)
	})

	t.Run("Pending Reservation", func(t *testing.T) {
		_, reservationRepo, _, _, _, _, svc := newUsageFixture()
		pending := *rsv
		pending.Status = domain.ReservationStatusPending
		reservationRepo.On("GetByID", ctx, rsv.ID).Return(&pending, nil)

		_, err := svc.CheckOut(ctx, CheckOutInput{ReservationID: rsv.ID, ActorID: 1}, startsAt)
		rej, ok := domain.AsRejection(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectInvalidTransition, rej.Code)
	})

	t.Run("Usage Log Already Exists", func(t *testing.T) {
		usageRepo, reservationRepo, _, _, _, _, svc := newUsageFixture()
		reservationRepo.On("GetByID", ctx, rsv.ID).Return(rsv, nil)
		usageRepo.On("GetByReservation", ctx, rsv.ID).Return(&domain.UsageLog{ID: 7}, nil)

		_, err := svc.CheckOut(ctx, CheckOutInput{ReservationID: rsv.ID, ActorID: 1}, startsAt)
		rej, ok := domain.AsRejection(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectUsageLogExists, rej.Code)
	})
}

func TestUsageService_CheckIn(t *testing.T) {
	ctx := context.Background()
	checkedOutAt := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	rsv := &domain.Reservation{ID: 5, ResourceID: 2, UserID: 1, Status: domain.ReservationStatusCheckedOut}

	mileTruck := &domain.Resource{
		ID:           2,
		Name:         "Truck",
		PricingModel: domain.PricingModelPerUnit,
		PricingUnit:  domain.PricingUnitMile,
		Rate:         decimal.RequireFromString("0.50"),
	}

	t.Run("Mileage Cost Derivation", func(t *testing.T) {
		usageRepo, reservationRepo, resourceRepo, _, _, _, svc := newUsageFixture()
		log := &domain.UsageLog{
			ID:            7,
			ReservationID: rsv.ID,
			ResourceID:    mileTruck.ID,
			UserID:        1,
			Status:        domain.UsageLogStatusCheckedOut,
			CheckedOutAt:  checkedOutAt,
			StartReading:  decPtr("12000"),
		}
		usageRepo.On("GetByID", ctx, log.ID).Return(log, nil)
		reservationRepo.On("GetByID", ctx, rsv.ID).Return(rsv, nil)
		resourceRepo.On("GetByID", ctx, mileTruck.ID).Return(mileTruck, nil)
		usageRepo.On("UpdateWithCheckIn", ctx, mock.AnythingOfType("*domain.UsageLog"), rsv).Return(nil)

		got, err := svc.CheckIn(ctx, CheckInInput{
			UsageLogID:  log.ID,
			ActorID:     1,
			CheckedInAt: checkedOutAt.Add(3 * time.Hour),
			EndReading:  decPtr("12040"),
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.UsageLogStatusCompleted, got.Status)
		assert.True(t, got.DistanceUnits.Equal(decimal.RequireFromString("40")))
		assert.True(t, got.DurationHours.Equal(decimal.RequireFromString("3")))
		assert.True(t, got.CalculatedCost.Equal(decimal.RequireFromString("20")), "got %s", got.CalculatedCost)
	})

	t.Run("Hourly Cost Derivation", func(t *testing.T) {
		usageRepo, reservationRepo, resourceRepo, _, _, _, svc := newUsageFixture()
		hourly := &domain.Resource{
			ID:           3,
			Name:         "Pressure Washer",
			PricingModel: domain.PricingModelPerUnit,
			PricingUnit:  domain.PricingUnitHour,
			Rate:         decimal.RequireFromString("10.00"),
		}
		log := &domain.UsageLog{
			ID:            8,
			ReservationID: rsv.ID,
			ResourceID:    hourly.ID,
			UserID:        1,
			Status:        domain.UsageLogStatusCheckedOut,
			CheckedOutAt:  checkedOutAt,
		}
		usageRepo.On("GetByID", ctx, log.ID).Return(log, nil)
		reservationRepo.On("GetByID", ctx, rsv.ID).Return(rsv, nil)
		resourceRepo.On("GetByID", ctx, hourly.ID).Return(hourly, nil)
		usageRepo.On("UpdateWithCheckIn", ctx, mock.AnythingOfType("*domain.UsageLog"), rsv).Return(nil)

		got, err := svc.CheckIn(ctx, CheckInInput{
			UsageLogID:  log.ID,
			ActorID:     1,
			CheckedInAt: checkedOutAt.Add(2*time.Hour + 30*time.Minute),
		})
		assert.NoError(t, err)
		assert.Nil(t, got.DistanceUnits)
		assert.True(t, got.DurationHours.Equal(decimal.RequireFromString("2.5")))
		assert.True(t, got.CalculatedCost.Equal(decimal.RequireFromString("25")), "got %s", got.CalculatedCost)
	})

	t.Run("Check In Before Check Out", func(t *testing.T) {
		usageRepo, _, _, _, _, _, svc := newUsageFixture()
		log := &domain.UsageLog{
			ID:           7,
			Status:       domain.UsageLogStatusCheckedOut,
			CheckedOutAt: checkedOutAt,
		}
		usageRepo.On("GetByID", ctx, log.ID).Return(log, nil)

		_, err := svc.CheckIn(ctx, CheckInInput{
			UsageLogID:  log.ID,
			ActorID:     1,
			CheckedInAt: checkedOutAt.Add(-time.Hour),
		})
		rej, ok := domain.AsRejection(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectCheckInOrder, rej.Code)
		usageRepo.AssertNotCalled(t, "UpdateWithCheckIn", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("End Reading Below Start", func(t *testing.T) {
		usageRepo, _, _, _, _, _, svc := newUsageFixture()
		log := &domain.UsageLog{
			ID:           7,
			Status:       domain.UsageLogStatusCheckedOut,
			CheckedOutAt: checkedOutAt,
			StartReading: decPtr("12000"),
		}
		usageRepo.On("GetByID", ctx, log.ID).Return(log, nil)

		_, err := svc.CheckIn(ctx, CheckInInput{
			UsageLogID:  log.ID,
			ActorID:     1,
			CheckedInAt: checkedOutAt.Add(time.Hour),
			EndReading:  decPtr("11990"),
		})
		rej, ok := domain.AsRejection(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectReadingOrder, rej.Code)
	})

	t.Run("Already Completed", func(t *testing.T) {
		usageRepo, _, _, _, _, _, svc := newUsageFixture()
		log := &domain.UsageLog{ID: 7, Status: domain.UsageLogStatusCompleted}
		usageRepo.On("GetByID", ctx, log.ID).Return(log, nil)

		_, err := svc.CheckIn(ctx, CheckInInput{UsageLogID: log.ID, ActorID: 1, CheckedInAt: checkedOutAt})
		rej, ok := domain.AsRejection(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectInvalidTransition, rej.Code)
	})
}

func TestUsageService_VerifyAndDispute(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)

	t.Run("Verify Completed", func(t *testing.T) {
		usageRepo, _, resourceRepo, userRepo, emailSvc, noteRepo, svc := newUsageFixture()
		log := &domain.UsageLog{ID: 7, ResourceID: 2, UserID: 1, Status: domain.UsageLogStatusCompleted}
		usageRepo.On("GetByID", ctx, log.ID).Return(log, nil)
		usageRepo.On("Update", ctx, mock.AnythingOfType("*domain.UsageLog")).Return(nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "member@test.com", Name: "Member"}, nil)
		resourceRepo.On("GetByID", ctx, int32(2)).Return(&domain.Resource{ID: 2, Name: "Truck"}, nil)
		emailSvc.On("SendUsageVerified", ctx, "member@test.com", "Member", "Truck").Return(nil)
		noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		got, err := svc.Verify(ctx, log.ID, int32(9), "", now)
		assert.NoError(t, err)
		assert.Equal(t, domain.UsageLogStatusVerified, got.Status)
		assert.Equal(t, int32(9), *got.VerifiedBy)
	})

	t.Run("Verify Disputed Resolves It", func(t *testing.T) {
		usageRepo, _, resourceRepo, userRepo, emailSvc, noteRepo, svc := newUsageFixture()
		log := &domain.UsageLog{ID: 7, ResourceID: 2, UserID: 1, Status: domain.UsageLogStatusDisputed}
		usageRepo.On("GetByID", ctx, log.ID).Return(log, nil)
		usageRepo.On("Update", ctx, mock.AnythingOfType("*domain.UsageLog")).Return(nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "member@test.com", Name: "Member"}, nil)
		resourceRepo.On("GetByID", ctx, int32(2)).Return(&domain.Resource{ID: 2, Name: "Truck"}, nil)
		emailSvc.On("SendUsageVerified", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		got, err := svc.Verify(ctx, log.ID, int32(9), "resolved after review", now)
		assert.NoError(t, err)
		assert.Equal(t, domain.UsageLogStatusVerified, got.Status)
	})

	t.Run("Verify Checked Out Rejected", func(t *testing.T) {
		usageRepo, _, _, _, _, _, svc := newUsageFixture()
		log := &domain.UsageLog{ID: 7, Status: domain.UsageLogStatusCheckedOut}
		usageRepo.On("GetByID", ctx, log.ID).Return(log, nil)

		_, err := svc.Verify(ctx, log.ID, int32(9), "", now)
		rej, ok := domain.AsRejection(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectInvalidTransition, rej.Code)
	})

	t.Run("Dispute Completed", func(t *testing.T) {
		usageRepo, _, resourceRepo, userRepo, emailSvc, noteRepo, svc := newUsageFixture()
		log := &domain.UsageLog{ID: 7, ResourceID: 2, UserID: 1, Status: domain.UsageLogStatusCompleted}
		usageRepo.On("GetByID", ctx, log.ID).Return(log, nil)
		usageRepo.On("Update", ctx, mock.AnythingOfType("*domain.UsageLog")).Return(nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "member@test.com", Name: "Member"}, nil)
		resourceRepo.On("GetByID", ctx, int32(2)).Return(&domain.Resource{ID: 2, Name: "Truck"}, nil)
		emailSvc.On("SendUsageDisputed", ctx, mock.Anything, mock.Anything, mock.Anything, "odometer mismatch").Return(nil)
		noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		got, err := svc.Dispute(ctx, log.ID, int32(9), "odometer mismatch", now)
		assert.NoError(t, err)
		assert.Equal(t, domain.UsageLogStatusDisputed, got.Status)
		assert.Equal(t, "odometer mismatch", got.AdminNotes)
	})

	t.Run("Dispute Checked Out Rejected", func(t *testing.T) {
		usageRepo, _, _, _, _, _, svc := newUsageFixture()
		log := &domain.UsageLog{ID: 7, Status: domain.UsageLogStatusCheckedOut}
		usageRepo.On("GetByID", ctx, log.ID).Return(log, nil)

		_, err := svc.Dispute(ctx, log.ID, int32(9), "", now)
		rej, ok := domain.AsRejection(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectInvalidTransition, rej.Code)
	})
}
