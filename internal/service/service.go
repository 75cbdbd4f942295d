package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"communityshare-backend/internal/domain"
)

type ResourceService interface {
	AddResource(ctx context.Context, res *domain.Resource) error
	UpdateResource(ctx context.Context, res *domain.Resource) error
	Activate(ctx context.Context, resourceID int32) (*domain.Resource, error)
	Deactivate(ctx context.Context, resourceID int32) (*domain.Resource, error)
	MarkMaintenance(ctx context.Context, resourceID int32) (*domain.Resource, error)
	GetResource(ctx context.Context, resourceID int32) (*domain.Resource, error)
	ListReservable(ctx context.Context) ([]domain.Resource, error)
}

type AvailabilityService interface {
	// IsSlotAvailable reports whether [startsAt, endsAt) is free of blocking
	// reservations on the resource. excludeReservationID (0 = none) lets an
	// in-place edit skip its own interval.
	IsSlotAvailable(ctx context.Context, resourceID int32, startsAt, endsAt time.Time, excludeReservationID int32) (bool, error)
	// BlockingForResource returns the blocking reservations intersecting the
	// range, ascending by start, for calendar rendering.
	BlockingForResource(ctx context.Context, resourceID int32, rangeStart, rangeEnd time.Time) ([]domain.Reservation, error)
}

type CreateReservationInput struct {
	ResourceID int32
	UserID     int32
	StartsAt   time.Time
	EndsAt     time.Time
	Notes      string
}

type ReservationService interface {
	Create(ctx context.Context, in CreateReservationInput, now time.Time) (*domain.Reservation, error)
	Confirm(ctx context.Context, reservationID, actorID int32, now time.Time) (*domain.Reservation, error)
	Cancel(ctx context.Context, reservationID, actorID int32, reason string, now time.Time) (*domain.Reservation, error)
	Get(ctx context.Context, reservationID int32) (*domain.Reservation, error)
	ListByUser(ctx context.Context, userID int32, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error)
}

type CheckOutInput struct {
	ReservationID  int32
	ActorID        int32
	StartReading   *decimal.Decimal
	StartPhotoPath string
	StartNotes     string
}

type CheckInInput struct {
	UsageLogID   int32
	ActorID      int32
	CheckedInAt  time.Time
	EndReading   *decimal.Decimal
	EndPhotoPath string
	EndNotes     string
}

type UsageService interface {
	// CheckOut opens the usage log and transitions the paired reservation to
	// CHECKED_OUT as one unit.
	CheckOut(ctx context.Context, in CheckOutInput, now time.Time) (*domain.UsageLog, error)
	// CheckIn closes the usage log, derives duration/distance/cost, and
	// completes the paired reservation as one unit.
	CheckIn(ctx context.Context, in CheckInInput) (*domain.UsageLog, error)
	Verify(ctx context.Context, usageLogID, actorID int32, adminNotes string, now time.Time) (*domain.UsageLog, error)
	Dispute(ctx context.Context, usageLogID, actorID int32, adminNotes string, now time.Time) (*domain.UsageLog, error)
	Get(ctx context.Context, usageLogID int32) (*domain.UsageLog, error)
	ListByUser(ctx context.Context, userID, page, pageSize int32) ([]domain.UsageLog, int32, error)
}

// InvoicePreview is the non-mutating dry run of invoice generation for one
// member.
type InvoicePreview struct {
	UserID   int32                `json:"user_id"`
	Items    []domain.InvoiceItem `json:"items"`
	Subtotal decimal.Decimal      `json:"subtotal"`
}

type InvoiceService interface {
	// GenerateForPeriod creates one draft invoice per member holding billable,
	// uninvoiced usage in [periodStart, periodEnd].
	GenerateForPeriod(ctx context.Context, periodStart, periodEnd time.Time, generatedBy int32, now time.Time) ([]domain.Invoice, error)
	Preview(ctx context.Context, userID int32, periodStart, periodEnd time.Time) (*InvoicePreview, error)
	Send(ctx context.Context, invoiceID int32, now time.Time) (*domain.Invoice, error)
	MarkPaid(ctx context.Context, invoiceID int32, now time.Time) (*domain.Invoice, error)
	// MarkOverdueInvoices flips every SENT invoice past its due date to
	// OVERDUE and returns how many were flipped.
	MarkOverdueInvoices(ctx context.Context, now time.Time) (int, error)
	Void(ctx context.Context, invoiceID int32) (*domain.Invoice, error)
	ApplyAdjustment(ctx context.Context, invoiceID int32, amount decimal.Decimal, reason string) (*domain.Invoice, error)
	AddManualItem(ctx context.Context, invoiceID int32, description string, quantity decimal.Decimal, unit string, unitPrice decimal.Decimal) (*domain.Invoice, error)
	RemoveItem(ctx context.Context, invoiceID, itemID int32) (*domain.Invoice, error)
	Get(ctx context.Context, invoiceID int32) (*domain.Invoice, error)
	ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Invoice, int32, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendReservationCreated(ctx context.Context, email, name, resourceName string, startsAt, endsAt time.Time, pending bool) error
	SendReservationConfirmed(ctx context.Context, email, name, resourceName string, startsAt time.Time) error
	SendReservationCancelled(ctx context.Context, email, name, resourceName, reason string) error
	SendUsageVerified(ctx context.Context, email, name, resourceName string) error
	SendUsageDisputed(ctx context.Context, email, name, resourceName, adminNotes string) error
	SendInvoiceSent(ctx context.Context, email, name, invoiceNumber string, total decimal.Decimal, dueDate *time.Time) error
	SendInvoiceOverdue(ctx context.Context, email, name, invoiceNumber string, total decimal.Decimal) error
}
