package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending    ReservationStatus = "PENDING"
	ReservationStatusConfirmed  ReservationStatus = "CONFIRMED"
	ReservationStatusCheckedOut ReservationStatus = "CHECKED_OUT"
	ReservationStatusCompleted  ReservationStatus = "COMPLETED"
	ReservationStatusCancelled  ReservationStatus = "CANCELLED"
)

// IsBlocking reports whether a reservation in this status counts against
// resource availability.
func (s ReservationStatus) IsBlocking() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCheckedOut:
		return true
	}
	return false
}

// CanConfirm: only a pending reservation may be confirmed.
func (s ReservationStatus) CanConfirm() bool {
	return s == ReservationStatusPending
}

// CanCancel covers the status half of the cancel guard; the caller also
// checks that the window has not started yet.
func (s ReservationStatus) CanCancel() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

func (s ReservationStatus) CanCheckOut() bool {
	return s == ReservationStatusConfirmed
}

func (s ReservationStatus) CanComplete() bool {
	return s == ReservationStatusCheckedOut
}

// Reservation books one resource for one member over a half-open interval
// [StartsAt, EndsAt).
type Reservation struct {
	ID         int32             `json:"id"`
	ResourceID int32             `json:"resource_id"`
	UserID     int32             `json:"user_id"`
	StartsAt   time.Time         `json:"starts_at"`
	EndsAt     time.Time         `json:"ends_at"`
	Status     ReservationStatus `json:"status"`
	Notes      string            `json:"notes"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	ConfirmedBy *int32     `json:"confirmed_by,omitempty"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy        *int32     `json:"cancelled_by,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

func (r *Reservation) IsPast(now time.Time) bool {
	return !r.EndsAt.After(now)
}

func (r *Reservation) IsUpcoming(now time.Time) bool {
	return r.StartsAt.After(now)
}

func (r *Reservation) IsInProgress(now time.Time) bool {
	return !r.StartsAt.After(now) && r.EndsAt.After(now)
}

// Overlaps applies the half-open interval overlap test against [starts, ends).
func (r *Reservation) Overlaps(starts, ends time.Time) bool {
	return r.StartsAt.Before(ends) && r.EndsAt.After(starts)
}

// CalendarFlags are rendering hints for a reservation on one calendar day.
// They are derived on demand from the raw interval and never persisted.
type CalendarFlags struct {
	MultiDay   bool `json:"multi_day"`
	SpanStart  bool `json:"span_start"`
	SpanMiddle bool `json:"span_middle"`
	SpanEnd    bool `json:"span_end"`
	TouchesDay bool `json:"touches_day"`
}

// CalendarFlagsOn computes multi-day span indicators for the calendar day
// containing `day` (evaluated in day's location).
func (r *Reservation) CalendarFlagsOn(day time.Time) CalendarFlags {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var f CalendarFlags
	if !r.Overlaps(dayStart, dayEnd) {
		return f
	}
	f.TouchesDay = true

	firstDay := time.Date(r.StartsAt.Year(), r.StartsAt.Month(), r.StartsAt.Day(), 0, 0, 0, 0, day.Location())
	lastInstant := r.EndsAt.Add(-time.Nanosecond)
	lastDay := time.Date(lastInstant.Year(), lastInstant.Month(), lastInstant.Day(), 0, 0, 0, 0, day.Location())

	f.MultiDay = lastDay.After(firstDay)
	if !f.MultiDay {
		return f
	}
	switch {
	case dayStart.Equal(firstDay):
		f.SpanStart = true
	case dayStart.Equal(lastDay):
		f.SpanEnd = true
	default:
		f.SpanMiddle = true
	}
	return f
}
