package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"communityshare-backend/internal/domain"
	"communityshare-backend/internal/logger"
	"communityshare-backend/internal/repository"
)

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, resource_id, user_id, starts_at, ends_at, status, COALESCE(notes, ''), confirmed_at, confirmed_by, cancelled_at, cancelled_by, COALESCE(cancellation_reason, ''), created_on, updated_on`

const blockingOverlapExists = `
	SELECT EXISTS (
		SELECT 1 FROM reservations
		WHERE resource_id = $1
		  AND status IN ('PENDING', 'CONFIRMED', 'CHECKED_OUT')
		  AND starts_at < $3 AND ends_at > $2
		  AND ($4 = 0 OR id <> $4)
	)`

func (r *reservationRepository) CreateLocked(ctx context.Context, rsv *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reservation tx: %w", err)
	}
	defer tx.Rollback()

	// Serialize concurrent bookings on the same resource; the overlap check
	// below is only safe while this lock is held.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, lockClassReservation, rsv.ResourceID); err != nil {
		return fmt.Errorf("acquire resource lock: %w", err)
	}

	var overlaps bool
	if err := tx.QueryRowContext(ctx, blockingOverlapExists, rsv.ResourceID, rsv.StartsAt, rsv.EndsAt, int32(0)).Scan(&overlaps); err != nil {
		return fmt.Errorf("overlap check: %w", err)
	}
	if overlaps {
		return domain.Rejectf(domain.RejectSlotUnavailable, "resource %d already booked in that window", rsv.ResourceID)
	}

	query := `INSERT INTO reservations (resource_id, user_id, starts_at, ends_at, status, notes, confirmed_at, confirmed_by, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now()
	if err := tx.QueryRowContext(ctx, query,
		rsv.ResourceID, rsv.UserID, rsv.StartsAt, rsv.EndsAt, rsv.Status, rsv.Notes,
		rsv.ConfirmedAt, rsv.ConfirmedBy, now, now,
	).Scan(&rsv.ID); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}
	logger.Debug("reservation created", "reservation_id", rsv.ID, "resource_id", rsv.ResourceID)
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	rsv := &domain.Reservation{}
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rsv.ID, &rsv.ResourceID, &rsv.UserID, &rsv.StartsAt, &rsv.EndsAt, &rsv.Status, &rsv.Notes,
		&rsv.ConfirmedAt, &rsv.ConfirmedBy, &rsv.CancelledAt, &rsv.CancelledBy, &rsv.CancellationReason,
		&rsv.CreatedOn, &rsv.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rsv, nil
}

func (r *reservationRepository) Update(ctx context.Context, rsv *domain.Reservation) error {
	query := `UPDATE reservations SET status=$1, notes=$2, confirmed_at=$3, confirmed_by=$4, cancelled_at=$5, cancelled_by=$6, cancellation_reason=$7, updated_on=$8 WHERE id=$9`
	_, err := r.db.ExecContext(ctx, query,
		rsv.Status, rsv.Notes, rsv.ConfirmedAt, rsv.ConfirmedBy,
		rsv.CancelledAt, rsv.CancelledBy, rsv.CancellationReason, time.Now(), rsv.ID,
	)
	return err
}

func (r *reservationRepository) ListByUser(ctx context.Context, userID int32, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error) {
	limit, offset := pageOffset(page, pageSize)
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1`

	args := []interface{}{userID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY starts_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reservations, err := scanReservations(rows)
	if err != nil {
		return nil, 0, err
	}
	return reservations, count, nil
}

func (r *reservationRepository) ListBlockingInRange(ctx context.Context, resourceID int32, rangeStart, rangeEnd time.Time) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE resource_id = $1
	            AND status IN ('PENDING', 'CONFIRMED', 'CHECKED_OUT')
	            AND starts_at < $3 AND ends_at > $2
	          ORDER BY starts_at ASC`
	rows, err := r.db.QueryContext(ctx, query, resourceID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *reservationRepository) HasBlockingOverlap(ctx context.Context, resourceID int32, startsAt, endsAt time.Time, excludeID int32) (bool, error) {
	var overlaps bool
	err := r.db.QueryRowContext(ctx, blockingOverlapExists, resourceID, startsAt, endsAt, excludeID).Scan(&overlaps)
	return overlaps, err
}

func scanReservations(rows *sql.Rows) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	for rows.Next() {
		var rsv domain.Reservation
		if err := rows.Scan(
			&rsv.ID, &rsv.ResourceID, &rsv.UserID, &rsv.StartsAt, &rsv.EndsAt, &rsv.Status, &rsv.Notes,
			&rsv.ConfirmedAt, &rsv.ConfirmedBy, &rsv.CancelledAt, &rsv.CancelledBy, &rsv.CancellationReason,
			&rsv.CreatedOn, &rsv.UpdatedOn,
		); err != nil {
			return nil, err
		}
		reservations = append(reservations, rsv)
	}
	return reservations, rows.Err()
}
