package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type UsageLogStatus string

const (
	UsageLogStatusCheckedOut UsageLogStatus = "CHECKED_OUT"
	UsageLogStatusCompleted  UsageLogStatus = "COMPLETED"
	UsageLogStatusVerified   UsageLogStatus = "VERIFIED"
	UsageLogStatusDisputed   UsageLogStatus = "DISPUTED"
)

// CanCheckIn: a usage log is closed out exactly once.
func (s UsageLogStatus) CanCheckIn() bool {
	return s == UsageLogStatusCheckedOut
}

// CanVerify: usage must be closed before verification; a disputed log may be
// re-verified.
func (s UsageLogStatus) CanVerify() bool {
	return s == UsageLogStatusCompleted || s == UsageLogStatusDisputed
}

// CanDispute: any closed state may be disputed.
func (s UsageLogStatus) CanDispute() bool {
	return s != UsageLogStatusCheckedOut
}

// Billable states feed invoice generation. Disputed usage is excluded until
// re-verified.
func (s UsageLogStatus) Billable() bool {
	return s == UsageLogStatusCompleted || s == UsageLogStatusVerified
}

// UsageLog records the actual usage of exactly one reservation, created at
// check-out.
type UsageLog struct {
	ID            int32          `json:"id"`
	ReservationID int32          `json:"reservation_id"`
	ResourceID    int32          `json:"resource_id"`
	UserID        int32          `json:"user_id"`
	Status        UsageLogStatus `json:"status"`

	CheckedOutAt time.Time  `json:"checked_out_at"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`

	StartReading *decimal.Decimal `json:"start_reading,omitempty"`
	EndReading   *decimal.Decimal `json:"end_reading,omitempty"`

	StartPhotoPath string `json:"start_photo_path,omitempty"`
	EndPhotoPath   string `json:"end_photo_path,omitempty"`
	StartNotes     string `json:"start_notes,omitempty"`
	EndNotes       string `json:"end_notes,omitempty"`

	// Derived at check-in.
	DurationHours  *decimal.Decimal `json:"duration_hours,omitempty"`
	DistanceUnits  *decimal.Decimal `json:"distance_units,omitempty"`
	CalculatedCost *decimal.Decimal `json:"calculated_cost,omitempty"`

	VerifiedBy *int32     `json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	AdminNotes string     `json:"admin_notes,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}
