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

type invoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, user_id, invoice_number, status, billing_period_start, billing_period_end, subtotal, adjustments, COALESCE(adjustment_reason, ''), total, due_date, sent_at, paid_at, generated_by, COALESCE(generation_run_id, ''), created_on, updated_on`

// CreateWithItems allocates the invoice number and writes the invoice plus
// its items atomically. Number allocation scans the current year's max
// sequence while holding a per-year advisory lock; the unique index on
// invoice_number is the backstop if the lock is ever bypassed.
func (r *invoiceRepository) CreateWithItems(ctx context.Context, inv *domain.Invoice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin invoice tx: %w", err)
	}
	defer tx.Rollback()

	now := inv.CreatedOn
	if now.IsZero() {
		now = time.Now()
	}
	year := now.Year()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, lockClassInvoiceNumber, year); err != nil {
		return fmt.Errorf("acquire invoice number lock: %w", err)
	}

	prefix := fmt.Sprintf("INV-%d-", year)
	var maxSeq int
	seqQuery := `SELECT COALESCE(MAX(CAST(SUBSTRING(invoice_number FROM $2) AS INTEGER)), 0) FROM invoices WHERE invoice_number LIKE $1`
	if err := tx.QueryRowContext(ctx, seqQuery, prefix+"%", len(prefix)+1).Scan(&maxSeq); err != nil {
		return fmt.Errorf("scan max invoice sequence: %w", err)
	}
	inv.InvoiceNumber = fmt.Sprintf("%s%04d", prefix, maxSeq+1)

	insert := `INSERT INTO invoices (user_id, invoice_number, status, billing_period_start, billing_period_end, subtotal, adjustments, adjustment_reason, total, due_date, generated_by, generation_run_id, created_on, updated_on)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, NULLIF($12, ''), $13, $14) RETURNING id`
	if err := tx.QueryRowContext(ctx, insert,
		inv.UserID, inv.InvoiceNumber, inv.Status, inv.PeriodStart, inv.PeriodEnd,
		inv.Subtotal, inv.Adjustments, inv.AdjustmentReason, inv.Total,
		inv.DueDate, inv.GeneratedBy, inv.GenerationRunID, now, now,
	).Scan(&inv.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.Rejectf(domain.RejectUsageAlreadyInvoiced, "invoice number %s already taken", inv.InvoiceNumber)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	itemInsert := `INSERT INTO invoice_items (invoice_id, usage_log_id, description, quantity, unit, unit_price, amount, created_on)
	               VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	for i := range inv.Items {
		item := &inv.Items[i]
		item.InvoiceID = inv.ID
		if err := tx.QueryRowContext(ctx, itemInsert,
			item.InvoiceID, item.UsageLogID, item.Description, item.Quantity, item.Unit, item.UnitPrice, item.Amount, now,
		).Scan(&item.ID); err != nil {
			if isUniqueViolation(err) {
				return domain.Rejectf(domain.RejectUsageAlreadyInvoiced, "usage log already billed on another invoice")
			}
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit invoice: %w", err)
	}
	logger.Debug("invoice created", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber, "items", len(inv.Items))
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id int32) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID, &inv.UserID, &inv.InvoiceNumber, &inv.Status, &inv.PeriodStart, &inv.PeriodEnd,
		&inv.Subtotal, &inv.Adjustments, &inv.AdjustmentReason, &inv.Total,
		&inv.DueDate, &inv.SentAt, &inv.PaidAt, &inv.GeneratedBy, &inv.GenerationRunID,
		&inv.CreatedOn, &inv.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *domain.Invoice) error {
	query := `UPDATE invoices SET status=$1, subtotal=$2, adjustments=$3, adjustment_reason=NULLIF($4, ''), total=$5, due_date=$6, sent_at=$7, paid_at=$8, updated_on=$9 WHERE id=$10`
	_, err := r.db.ExecContext(ctx, query,
		inv.Status, inv.Subtotal, inv.Adjustments, inv.AdjustmentReason, inv.Total,
		inv.DueDate, inv.SentAt, inv.PaidAt, time.Now(), inv.ID,
	)
	return err
}

func (r *invoiceRepository) AddItem(ctx context.Context, item *domain.InvoiceItem) error {
	query := `INSERT INTO invoice_items (invoice_id, usage_log_id, description, quantity, unit, unit_price, amount, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		item.InvoiceID, item.UsageLogID, item.Description, item.Quantity, item.Unit, item.UnitPrice, item.Amount, time.Now(),
	).Scan(&item.ID)
	if err != nil && isUniqueViolation(err) {
		return domain.Rejectf(domain.RejectUsageAlreadyInvoiced, "usage log already billed on another invoice")
	}
	return err
}

func (r *invoiceRepository) RemoveItem(ctx context.Context, invoiceID, itemID int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invoice_items WHERE id = $1 AND invoice_id = $2`, itemID, invoiceID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) ListItems(ctx context.Context, invoiceID int32) ([]domain.InvoiceItem, error) {
	query := `SELECT id, invoice_id, usage_log_id, description, quantity, COALESCE(unit, ''), unit_price, amount, created_on
	          FROM invoice_items WHERE invoice_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.InvoiceItem
	for rows.Next() {
		var item domain.InvoiceItem
		if err := rows.Scan(
			&item.ID, &item.InvoiceID, &item.UsageLogID, &item.Description,
			&item.Quantity, &item.Unit, &item.UnitPrice, &item.Amount, &item.CreatedOn,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *invoiceRepository) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Invoice, int32, error) {
	limit, offset := pageOffset(page, pageSize)

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM invoices WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE user_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invoices, err := scanInvoices(rows)
	if err != nil {
		return nil, 0, err
	}
	return invoices, count, nil
}

func (r *invoiceRepository) ListSentPastDue(ctx context.Context, now time.Time) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices
	          WHERE status = $1 AND due_date IS NOT NULL AND due_date < $2
	          ORDER BY due_date ASC`
	rows, err := r.db.QueryContext(ctx, query, domain.InvoiceStatusSent, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func scanInvoices(rows *sql.Rows) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.UserID, &inv.InvoiceNumber, &inv.Status, &inv.PeriodStart, &inv.PeriodEnd,
			&inv.Subtotal, &inv.Adjustments, &inv.AdjustmentReason, &inv.Total,
			&inv.DueDate, &inv.SentAt, &inv.PaidAt, &inv.GeneratedBy, &inv.GenerationRunID,
			&inv.CreatedOn, &inv.UpdatedOn,
		); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
