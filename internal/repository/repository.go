package repository

import (
	"context"
	"time"

	"communityshare-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type ResourceRepository interface {
	Create(ctx context.Context, res *domain.Resource) error
	GetByID(ctx context.Context, id int32) (*domain.Resource, error)
	Update(ctx context.Context, res *domain.Resource) error
	ListByStatus(ctx context.Context, status domain.ResourceStatus) ([]domain.Resource, error)
}

type ReservationRepository interface {
	// CreateLocked inserts the reservation inside one transaction that holds a
	// per-resource advisory lock across the overlap re-check, so two
	// concurrent bookings for the same resource serialize. Returns a
	// SLOT_UNAVAILABLE rejection when a blocking reservation overlaps.
	CreateLocked(ctx context.Context, rsv *domain.Reservation) error
	GetByID(ctx context.Context, id int32) (*domain.Reservation, error)
	Update(ctx context.Context, rsv *domain.Reservation) error
	ListByUser(ctx context.Context, userID int32, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error)
	// ListBlockingInRange returns blocking reservations intersecting
	// [rangeStart, rangeEnd), ascending by starts_at.
	ListBlockingInRange(ctx context.Context, resourceID int32, rangeStart, rangeEnd time.Time) ([]domain.Reservation, error)
	// HasBlockingOverlap applies the half-open overlap test against blocking
	// reservations; excludeID skips one reservation (0 = none).
	HasBlockingOverlap(ctx context.Context, resourceID int32, startsAt, endsAt time.Time, excludeID int32) (bool, error)
}

type UsageLogRepository interface {
	// CreateWithCheckOut inserts the usage log and flips the paired
	// reservation to CHECKED_OUT in one transaction.
	CreateWithCheckOut(ctx context.Context, log *domain.UsageLog, rsv *domain.Reservation) error
	// UpdateWithCheckIn persists the closed-out log and completes the paired
	// reservation in one transaction.
	UpdateWithCheckIn(ctx context.Context, log *domain.UsageLog, rsv *domain.Reservation) error
	GetByID(ctx context.Context, id int32) (*domain.UsageLog, error)
	GetByReservation(ctx context.Context, reservationID int32) (*domain.UsageLog, error)
	Update(ctx context.Context, log *domain.UsageLog) error
	ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.UsageLog, int32, error)
	// ListBillableUninvoiced selects billable usage logs checked out within
	// [periodStart, periodEnd] that no invoice item references yet, ordered by
	// user then checked_out_at ascending.
	ListBillableUninvoiced(ctx context.Context, periodStart, periodEnd time.Time) ([]domain.UsageLog, error)
	ListBillableUninvoicedByUser(ctx context.Context, userID int32, periodStart, periodEnd time.Time) ([]domain.UsageLog, error)
}

type InvoiceRepository interface {
	// CreateWithItems allocates the next INV-{year}-{seq} number under a
	// per-year advisory lock and inserts the invoice with its items in one
	// transaction. A usage log already referenced by an item surfaces as a
	// USAGE_ALREADY_INVOICED rejection (unique index backstop).
	CreateWithItems(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id int32) (*domain.Invoice, error)
	Update(ctx context.Context, inv *domain.Invoice) error
	AddItem(ctx context.Context, item *domain.InvoiceItem) error
	RemoveItem(ctx context.Context, invoiceID, itemID int32) error
	ListItems(ctx context.Context, invoiceID int32) ([]domain.InvoiceItem, error)
	ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Invoice, int32, error)
	// ListSentPastDue returns SENT invoices whose due date has elapsed.
	ListSentPastDue(ctx context.Context, now time.Time) ([]domain.Invoice, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
