package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"communityshare-backend/internal/domain"
)

// Pure cost calculation over a resource's pricing configuration. These
// functions never fail for valid resources; a per-unit resource with no
// pricing unit is an upstream data corruption and panics.

var (
	one         = decimal.NewFromInt(1)
	sixty       = decimal.NewFromInt(60)
	hoursPerDay = decimal.NewFromInt(24)
)

// CalculateCost multiplies the resource rate by a measured quantity.
// Flat-fee resources ignore the quantity and charge the rate per booking.
func CalculateCost(res *domain.Resource, units decimal.Decimal) decimal.Decimal {
	if res.PricingModel == domain.PricingModelFlatFee {
		return res.Rate
	}
	mustHaveUnit(res)
	return res.Rate.Mul(units)
}

// CalculateReservationCost estimates the cost of a reservation window before
// any usage is measured. Distance and trip priced resources collapse to one
// unit here since actual usage is unknown at booking time.
func CalculateReservationCost(res *domain.Resource, startsAt, endsAt time.Time) decimal.Decimal {
	if res.PricingModel == domain.PricingModelFlatFee {
		return res.Rate
	}
	mustHaveUnit(res)
	switch res.PricingUnit {
	case domain.PricingUnitHour:
		return res.Rate.Mul(HoursBetween(startsAt, endsAt))
	case domain.PricingUnitDay:
		return res.Rate.Mul(decimal.NewFromInt(int64(InclusiveDaySpan(startsAt, endsAt))))
	default:
		// MILE, KILOMETER, TRIP: one unit until usage is measured.
		return res.Rate.Mul(one)
	}
}

// UsageCost prices measured usage at check-in. Hour-unit resources charge the
// elapsed fractional hours, distance units charge the metered distance
// (falling back to one unit when no readings were taken), day units charge
// whole days rounded up, and everything else is the flat booking rate.
func UsageCost(res *domain.Resource, durationHours decimal.Decimal, distanceUnits *decimal.Decimal) decimal.Decimal {
	if res.PricingModel == domain.PricingModelFlatFee {
		return res.Rate
	}
	mustHaveUnit(res)
	switch res.PricingUnit {
	case domain.PricingUnitHour:
		return res.Rate.Mul(durationHours)
	case domain.PricingUnitMile, domain.PricingUnitKilometer:
		if distanceUnits == nil {
			return res.Rate.Mul(one)
		}
		return res.Rate.Mul(*distanceUnits)
	case domain.PricingUnitDay:
		days := durationHours.Div(hoursPerDay).Ceil()
		if days.LessThan(one) {
			days = one
		}
		return res.Rate.Mul(days)
	default:
		return res.Rate.Mul(one)
	}
}

// HoursBetween returns the fractional hours in [startsAt, endsAt).
func HoursBetween(startsAt, endsAt time.Time) decimal.Decimal {
	minutes := endsAt.Sub(startsAt).Minutes()
	return decimal.NewFromFloat(minutes).Div(sixty)
}

// InclusiveDaySpan counts the calendar days a window touches, both endpoints
// included. A same-day window spans 1 day.
func InclusiveDaySpan(startsAt, endsAt time.Time) int {
	start := dateOnly(startsAt)
	end := dateOnly(endsAt)
	return int(end.Sub(start).Hours()/24) + 1
}

// DaysAhead counts whole calendar days between now and the booking start,
// used for the advance-booking policy.
func DaysAhead(now, startsAt time.Time) int {
	return int(dateOnly(startsAt).Sub(dateOnly(now)).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func mustHaveUnit(res *domain.Resource) {
	if res.PricingUnit == "" {
		panic(fmt.Sprintf("resource %d: per-unit pricing with no pricing unit", res.ID))
	}
}
