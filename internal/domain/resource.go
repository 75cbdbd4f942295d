package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ResourceType string

const (
	ResourceTypeVehicle   ResourceType = "VEHICLE"
	ResourceTypeEquipment ResourceType = "EQUIPMENT"
	ResourceTypeSpace     ResourceType = "SPACE"
)

type ResourceStatus string

const (
	ResourceStatusActive      ResourceStatus = "ACTIVE"
	ResourceStatusInactive    ResourceStatus = "INACTIVE"
	ResourceStatusMaintenance ResourceStatus = "MAINTENANCE"
)

type PricingModel string

const (
	PricingModelFlatFee PricingModel = "FLAT_FEE"
	PricingModelPerUnit PricingModel = "PER_UNIT"
)

// PricingUnit is meaningful only under PricingModelPerUnit.
type PricingUnit string

const (
	PricingUnitHour      PricingUnit = "HOUR"
	PricingUnitDay       PricingUnit = "DAY"
	PricingUnitMile      PricingUnit = "MILE"
	PricingUnitKilometer PricingUnit = "KILOMETER"
	PricingUnitTrip      PricingUnit = "TRIP"
)

// Label returns the short unit label used on invoice lines.
func (u PricingUnit) Label() string {
	switch u {
	case PricingUnitHour:
		return "hr"
	case PricingUnitDay:
		return "day"
	case PricingUnitMile:
		return "mi"
	case PricingUnitKilometer:
		return "km"
	case PricingUnitTrip:
		return "trip"
	}
	return ""
}

type Resource struct {
	ID           int32          `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Type         ResourceType   `json:"type"`
	Status       ResourceStatus `json:"status"`
	PricingModel PricingModel   `json:"pricing_model"`
	// PricingUnit is set iff PricingModel is PER_UNIT.
	PricingUnit      PricingUnit     `json:"pricing_unit,omitempty"`
	Rate             decimal.Decimal `json:"rate"`
	RequiresApproval bool            `json:"requires_approval"`
	// MaxReservationDays: nil = unlimited, 0 = single-day only,
	// positive = inclusive max span in days.
	MaxReservationDays *int32 `json:"max_reservation_days"`
	// AdvanceBookingDays caps how many days ahead a booking may start.
	// nil = no cap.
	AdvanceBookingDays *int32    `json:"advance_booking_days"`
	CreatedOn          time.Time `json:"created_on"`
	UpdatedOn          time.Time `json:"updated_on"`
}

// CanBeReserved reports whether new reservations may be created for the
// resource.
func (r *Resource) CanBeReserved() bool {
	return r.Status == ResourceStatusActive
}

// Validate checks the pricing invariant: a per-unit resource must carry a
// unit and a flat-fee resource must not.
func (r *Resource) Validate() error {
	if r.Rate.IsNegative() {
		return Rejectf(RejectInvalidTransition, "rate must not be negative")
	}
	switch r.PricingModel {
	case PricingModelPerUnit:
		if r.PricingUnit == "" {
			return Rejectf(RejectInvalidTransition, "per-unit pricing requires a pricing unit")
		}
	case PricingModelFlatFee:
		if r.PricingUnit != "" {
			return Rejectf(RejectInvalidTransition, "flat-fee pricing must not carry a pricing unit")
		}
	}
	return nil
}

// BookingDurationAllowed applies the tri-state max-reservation-days policy to
// an inclusive day span.
func (r *Resource) BookingDurationAllowed(durationDays int) bool {
	if r.MaxReservationDays == nil {
		return true
	}
	if *r.MaxReservationDays == 0 {
		return durationDays <= 1
	}
	return durationDays <= int(*r.MaxReservationDays)
}
