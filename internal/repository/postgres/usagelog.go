package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"communityshare-backend/internal/domain"
	"communityshare-backend/internal/logger"
	"communityshare-backend/internal/repository"
)

type usageLogRepository struct {
	db *sql.DB
}

func NewUsageLogRepository(db *sql.DB) repository.UsageLogRepository {
	return &usageLogRepository{db: db}
}

const usageLogColumns = `id, reservation_id, resource_id, user_id, status, checked_out_at, checked_in_at, start_reading, end_reading, COALESCE(start_photo_path, ''), COALESCE(end_photo_path, ''), COALESCE(start_notes, ''), COALESCE(end_notes, ''), duration_hours, distance_units, calculated_cost, verified_by, verified_at, COALESCE(admin_notes, ''), created_on, updated_on`

func (r *usageLogRepository) CreateWithCheckOut(ctx context.Context, log *domain.UsageLog, rsv *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin check-out tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	insert := `INSERT INTO usage_logs (reservation_id, resource_id, user_id, status, checked_out_at, start_reading, start_photo_path, start_notes, created_on, updated_on)
	           VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10) RETURNING id`
	if err := tx.QueryRowContext(ctx, insert,
		log.ReservationID, log.ResourceID, log.UserID, log.Status, log.CheckedOutAt,
		nullDecimal(log.StartReading), log.StartPhotoPath, log.StartNotes, now, now,
	).Scan(&log.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.Rejectf(domain.RejectUsageLogExists, "reservation %d already checked out", log.ReservationID)
		}
		return fmt.Errorf("insert usage log: %w", err)
	}

	// The reservation flips to CHECKED_OUT in the same transaction so a log
	// never exists without its paired transition, and vice versa.
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status=$1, updated_on=$2 WHERE id=$3 AND status=$4`,
		domain.ReservationStatusCheckedOut, now, rsv.ID, domain.ReservationStatusConfirmed,
	)
	if err != nil {
		return fmt.Errorf("check out reservation: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return domain.Rejectf(domain.RejectInvalidTransition, "reservation %d is not confirmed", rsv.ID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit check-out: %w", err)
	}
	rsv.Status = domain.ReservationStatusCheckedOut
	logger.Debug("usage log opened", "usage_log_id", log.ID, "reservation_id", log.ReservationID)
	return nil
}

func (r *usageLogRepository) UpdateWithCheckIn(ctx context.Context, log *domain.UsageLog, rsv *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin check-in tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	update := `UPDATE usage_logs SET status=$1, checked_in_at=$2, end_reading=$3, end_photo_path=NULLIF($4, ''), end_notes=NULLIF($5, ''), duration_hours=$6, distance_units=$7, calculated_cost=$8, updated_on=$9
	           WHERE id=$10 AND status=$11`
	res, err := tx.ExecContext(ctx, update,
		log.Status, log.CheckedInAt, nullDecimal(log.EndReading), log.EndPhotoPath, log.EndNotes,
		nullDecimal(log.DurationHours), nullDecimal(log.DistanceUnits), nullDecimal(log.CalculatedCost),
		now, log.ID, domain.UsageLogStatusCheckedOut,
	)
	if err != nil {
		return fmt.Errorf("close usage log: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return domain.Rejectf(domain.RejectInvalidTransition, "usage log %d is not checked out", log.ID)
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE reservations SET status=$1, updated_on=$2 WHERE id=$3 AND status=$4`,
		domain.ReservationStatusCompleted, now, rsv.ID, domain.ReservationStatusCheckedOut,
	)
	if err != nil {
		return fmt.Errorf("complete reservation: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return domain.Rejectf(domain.RejectInvalidTransition, "reservation %d is not checked out", rsv.ID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit check-in: %w", err)
	}
	rsv.Status = domain.ReservationStatusCompleted
	logger.Debug("usage log closed", "usage_log_id", log.ID, "reservation_id", log.ReservationID)
	return nil
}

func (r *usageLogRepository) GetByID(ctx context.Context, id int32) (*domain.UsageLog, error) {
	query := `SELECT ` + usageLogColumns + ` FROM usage_logs WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *usageLogRepository) GetByReservation(ctx context.Context, reservationID int32) (*domain.UsageLog, error) {
	query := `SELECT ` + usageLogColumns + ` FROM usage_logs WHERE reservation_id = $1`
	return r.getOne(ctx, query, reservationID)
}

func (r *usageLogRepository) getOne(ctx context.Context, query string, arg interface{}) (*domain.UsageLog, error) {
	log := &domain.UsageLog{}
	var startReading, endReading, durationHours, distanceUnits, calculatedCost decimal.NullDecimal
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&log.ID, &log.ReservationID, &log.ResourceID, &log.UserID, &log.Status,
		&log.CheckedOutAt, &log.CheckedInAt, &startReading, &endReading,
		&log.StartPhotoPath, &log.EndPhotoPath, &log.StartNotes, &log.EndNotes,
		&durationHours, &distanceUnits, &calculatedCost,
		&log.VerifiedBy, &log.VerifiedAt, &log.AdminNotes, &log.CreatedOn, &log.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	log.StartReading = decimalPtr(startReading)
	log.EndReading = decimalPtr(endReading)
	log.DurationHours = decimalPtr(durationHours)
	log.DistanceUnits = decimalPtr(distanceUnits)
	log.CalculatedCost = decimalPtr(calculatedCost)
	return log, nil
}

func (r *usageLogRepository) Update(ctx context.Context, log *domain.UsageLog) error {
	query := `UPDATE usage_logs SET status=$1, verified_by=$2, verified_at=$3, admin_notes=NULLIF($4, ''), updated_on=$5 WHERE id=$6`
	_, err := r.db.ExecContext(ctx, query,
		log.Status, log.VerifiedBy, log.VerifiedAt, log.AdminNotes, time.Now(), log.ID,
	)
	return err
}

func (r *usageLogRepository) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.UsageLog, int32, error) {
	limit, offset := pageOffset(page, pageSize)

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM usage_logs WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + usageLogColumns + ` FROM usage_logs WHERE user_id = $1 ORDER BY checked_out_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs, err := scanUsageLogs(rows)
	if err != nil {
		return nil, 0, err
	}
	return logs, count, nil
}

const uninvoicedFilter = `
	  AND status IN ('COMPLETED', 'VERIFIED')
	  AND checked_out_at >= $1 AND checked_out_at <= $2
	  AND NOT EXISTS (SELECT 1 FROM invoice_items ii WHERE ii.usage_log_id = usage_logs.id)`

func (r *usageLogRepository) ListBillableUninvoiced(ctx context.Context, periodStart, periodEnd time.Time) ([]domain.UsageLog, error) {
	query := `SELECT ` + usageLogColumns + ` FROM usage_logs WHERE 1=1` + uninvoicedFilter +
		` ORDER BY user_id ASC, checked_out_at ASC`
	rows, err := r.db.QueryContext(ctx, query, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsageLogs(rows)
}

func (r *usageLogRepository) ListBillableUninvoicedByUser(ctx context.Context, userID int32, periodStart, periodEnd time.Time) ([]domain.UsageLog, error) {
	query := `SELECT ` + usageLogColumns + ` FROM usage_logs WHERE user_id = $3` + uninvoicedFilter +
		` ORDER BY checked_out_at ASC`
	rows, err := r.db.QueryContext(ctx, query, periodStart, periodEnd, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsageLogs(rows)
}

func scanUsageLogs(rows *sql.Rows) ([]domain.UsageLog, error) {
	var logs []domain.UsageLog
	for rows.Next() {
		var log domain.UsageLog
		var startReading, endReading, durationHours, distanceUnits, calculatedCost decimal.NullDecimal
		if err := rows.Scan(
			&log.ID, &log.ReservationID, &log.ResourceID, &log.UserID, &log.Status,
			&log.CheckedOutAt, &log.CheckedInAt, &startReading, &endReading,
			&log.StartPhotoPath, &log.EndPhotoPath, &log.StartNotes, &log.EndNotes,
			&durationHours, &distanceUnits, &calculatedCost,
			&log.VerifiedBy, &log.VerifiedAt, &log.AdminNotes, &log.CreatedOn, &log.UpdatedOn,
		); err != nil {
			return nil, err
		}
		log.StartReading = decimalPtr(startReading)
		log.EndReading = decimalPtr(endReading)
		log.DurationHours = decimalPtr(durationHours)
		log.DistanceUnits = decimalPtr(distanceUnits)
		log.CalculatedCost = decimalPtr(calculatedCost)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
