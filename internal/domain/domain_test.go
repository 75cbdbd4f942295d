package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestReservationStatus_Predicates(t *testing.T) {
	t.Run("Blocking Statuses", func(t *testing.T) {
		assert.True(t, ReservationStatusPending.IsBlocking())
		assert.True(t, ReservationStatusConfirmed.IsBlocking())
		assert.True(t, ReservationStatusCheckedOut.IsBlocking())
		assert.False(t, ReservationStatusCompleted.IsBlocking())
		assert.False(t, ReservationStatusCancelled.IsBlocking())
	})

	t.Run("Transition Guards", func(t *testing.T) {
		assert.True(t, ReservationStatusPending.CanConfirm())
		assert.False(t, ReservationStatusConfirmed.CanConfirm())

		assert.True(t, ReservationStatusPending.CanCancel())
		assert.True(t, ReservationStatusConfirmed.CanCancel())
		assert.False(t, ReservationStatusCheckedOut.CanCancel())
		assert.False(t, ReservationStatusCompleted.CanCancel())

		assert.True(t, ReservationStatusConfirmed.CanCheckOut())
		assert.False(t, ReservationStatusPending.CanCheckOut())

		assert.True(t, ReservationStatusCheckedOut.CanComplete())
		assert.False(t, ReservationStatusConfirmed.CanComplete())
	})
}

func TestUsageLogStatus_Predicates(t *testing.T) {
	assert.True(t, UsageLogStatusCheckedOut.CanCheckIn())
	assert.False(t, UsageLogStatusCompleted.CanCheckIn())

	assert.True(t, UsageLogStatusCompleted.CanVerify())
	assert.True(t, UsageLogStatusDisputed.CanVerify())
	assert.False(t, UsageLogStatusCheckedOut.CanVerify())
	assert.False(t, UsageLogStatusVerified.CanVerify())

	assert.False(t, UsageLogStatusCheckedOut.CanDispute())
	assert.True(t, UsageLogStatusVerified.CanDispute())

	assert.True(t, UsageLogStatusCompleted.Billable())
	assert.True(t, UsageLogStatusVerified.Billable())
	assert.False(t, UsageLogStatusDisputed.Billable())
	assert.False(t, UsageLogStatusCheckedOut.Billable())
}

func TestReservation_Overlaps(t *testing.T) {
	base := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	rsv := &Reservation{StartsAt: base, EndsAt: base.Add(4 * time.Hour)}

	t.Run("Back To Back Does Not Overlap", func(t *testing.T) {
		assert.False(t, rsv.Overlaps(base.Add(4*time.Hour), base.Add(8*time.Hour)))
		assert.False(t, rsv.Overlaps(base.Add(-4*time.Hour), base))
	})

	t.Run("Partial Overlap", func(t *testing.T) {
		assert.True(t, rsv.Overlaps(base.Add(3*time.Hour), base.Add(5*time.Hour)))
		assert.True(t, rsv.Overlaps(base.Add(-time.Hour), base.Add(time.Hour)))
	})

	t.Run("Containment", func(t *testing.T) {
		assert.True(t, rsv.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)))
		assert.True(t, rsv.Overlaps(base.Add(-time.Hour), base.Add(5*time.Hour)))
	})
}

func TestReservation_CalendarFlagsOn(t *testing.T) {
	// June 11 22:00 through June 13 08:00, a three day span.
	rsv := &Reservation{
		StartsAt: time.Date(2025, 6, 11, 22, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2025, 6, 13, 8, 0, 0, 0, time.UTC),
	}

	t.Run("First Day", func(t *testing.T) {
		f := rsv.CalendarFlagsOn(time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC))
		assert.True(t, f.TouchesDay)
		assert.True(t, f.MultiDay)
		assert.True(t, f.SpanStart)
		assert.False(t, f.SpanMiddle)
		assert.False(t, f.SpanEnd)
	})

	t.Run("Middle Day", func(t *testing.T) {
		f := rsv.CalendarFlagsOn(time.Date(2025, 6, 12, 12, 0, 0, 0, time.UTC))
		assert.True(t, f.SpanMiddle)
	})

	t.Run("Last Day", func(t *testing.T) {
		f := rsv.CalendarFlagsOn(time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC))
		assert.True(t, f.SpanEnd)
	})

	t.Run("Untouched Day", func(t *testing.T) {
		f := rsv.CalendarFlagsOn(time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC))
		assert.False(t, f.TouchesDay)
		assert.False(t, f.MultiDay)
	})

	t.Run("Single Day Booking", func(t *testing.T) {
		short := &Reservation{
			StartsAt: time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC),
			EndsAt:   time.Date(2025, 6, 11, 14, 0, 0, 0, time.UTC),
		}
		f := short.CalendarFlagsOn(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC))
		assert.True(t, f.TouchesDay)
		assert.False(t, f.MultiDay)
	})

	t.Run("Midnight End Excluded From Next Day", func(t *testing.T) {
		// Ends exactly at midnight, so June 12 is untouched.
		toMidnight := &Reservation{
			StartsAt: time.Date(2025, 6, 11, 20, 0, 0, 0, time.UTC),
			EndsAt:   time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		}
		f := toMidnight.CalendarFlagsOn(time.Date(2025, 6, 12, 12, 0, 0, 0, time.UTC))
		assert.False(t, f.TouchesDay)
		f = toMidnight.CalendarFlagsOn(time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC))
		assert.True(t, f.TouchesDay)
		assert.False(t, f.MultiDay)
	})
}

func TestResource_Validate(t *testing.T) {
	t.Run("Per Unit Requires Unit", func(t *testing.T) {
		res := &Resource{PricingModel: PricingModelPerUnit, Rate: decimal.NewFromInt(1)}
		assert.Error(t, res.Validate())
		res.PricingUnit = PricingUnitHour
		assert.NoError(t, res.Validate())
	})

	t.Run("Flat Fee Rejects Unit", func(t *testing.T) {
		res := &Resource{PricingModel: PricingModelFlatFee, PricingUnit: PricingUnitHour, Rate: decimal.NewFromInt(1)}
		assert.Error(t, res.Validate())
	})
}

func TestResource_BookingDurationAllowed(t *testing.T) {
	unlimited := &Resource{}
	assert.True(t, unlimited.BookingDurationAllowed(365))

	singleDay := int32(0)
	sameDay := &Resource{MaxReservationDays: &singleDay}
	assert.True(t, sameDay.BookingDurationAllowed(1))
	assert.False(t, sameDay.BookingDurationAllowed(2))

	week := int32(7)
	capped := &Resource{MaxReservationDays: &week}
	assert.True(t, capped.BookingDurationAllowed(7))
	assert.False(t, capped.BookingDurationAllowed(8))
}

func TestInvoice_RecalculateTotals(t *testing.T) {
	inv := &Invoice{
		Adjustments: decimal.RequireFromString("-5.00"),
		Items: []InvoiceItem{
			{Amount: decimal.RequireFromString("20.00")},
			{Amount: decimal.RequireFromString("15.00")},
		},
	}
	inv.RecalculateTotals()
	assert.True(t, inv.Subtotal.Equal(decimal.RequireFromString("35.00")))
	assert.True(t, inv.Total.Equal(decimal.RequireFromString("30.00")))

	inv.Items = inv.Items[:1]
	inv.Adjustments = decimal.Zero
	inv.RecalculateTotals()
	assert.True(t, inv.Total.Equal(decimal.RequireFromString("20.00")))
}

func TestRejection(t *testing.T) {
	err := Rejectf(RejectSlotUnavailable, "resource %d is booked", 2)

	rej, ok := AsRejection(err)
	assert.True(t, ok)
	assert.Equal(t, RejectSlotUnavailable, rej.Code)
	assert.Contains(t, err.Error(), "resource 2 is booked")

	_, ok = AsRejection(ErrNotFound)
	assert.False(t, ok)
}
