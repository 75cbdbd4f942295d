package postgres

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"communityshare-backend/internal/repository"
)

// Advisory lock classes. The two-int form of pg_advisory_xact_lock keys a
// lock on (class, id) so reservation and invoice-number serialization never
// collide.
const (
	lockClassReservation   = 1
	lockClassInvoiceNumber = 2
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.ResourceRepository
	repository.ReservationRepository
	repository.UsageLogRepository
	repository.InvoiceRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		ResourceRepository:     NewResourceRepository(db),
		ReservationRepository:  NewReservationRepository(db),
		UsageLogRepository:     NewUsageLogRepository(db),
		InvoiceRepository:      NewInvoiceRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// pageOffset normalizes one-based pagination. Page numbers below 1 clamp to
// the first page and non-positive page sizes fall back to 20 so Postgres
// never sees a negative OFFSET.
func pageOffset(page, pageSize int32) (limit, offset int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}

func decimalPtr(nd decimal.NullDecimal) *decimal.Decimal {
	if !nd.Valid {
		return nil
	}
	d := nd.Decimal
	return &d
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
