package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"communityshare-backend/internal/domain"
	"communityshare-backend/internal/repository"
)

type resourceRepository struct {
	db *sql.DB
}

func NewResourceRepository(db *sql.DB) repository.ResourceRepository {
	return &resourceRepository{db: db}
}

const resourceColumns = `id, name, description, type, status, pricing_model, COALESCE(pricing_unit, ''), rate, requires_approval, max_reservation_days, advance_booking_days, created_on, updated_on`

func (r *resourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	query := `INSERT INTO resources (name, description, type, status, pricing_model, pricing_unit, rate, requires_approval, max_reservation_days, advance_booking_days, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		res.Name, res.Description, res.Type, res.Status, res.PricingModel, string(res.PricingUnit),
		res.Rate, res.RequiresApproval, res.MaxReservationDays, res.AdvanceBookingDays, now, now,
	).Scan(&res.ID)
}

func (r *resourceRepository) GetByID(ctx context.Context, id int32) (*domain.Resource, error) {
	res := &domain.Resource{}
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID, &res.Name, &res.Description, &res.Type, &res.Status, &res.PricingModel, &res.PricingUnit,
		&res.Rate, &res.RequiresApproval, &res.MaxReservationDays, &res.AdvanceBookingDays, &res.CreatedOn, &res.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *resourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	query := `UPDATE resources SET name=$1, description=$2, type=$3, status=$4, pricing_model=$5, pricing_unit=NULLIF($6, ''), rate=$7, requires_approval=$8, max_reservation_days=$9, advance_booking_days=$10, updated_on=$11 WHERE id=$12`
	_, err := r.db.ExecContext(ctx, query,
		res.Name, res.Description, res.Type, res.Status, res.PricingModel, string(res.PricingUnit),
		res.Rate, res.RequiresApproval, res.MaxReservationDays, res.AdvanceBookingDays, time.Now(), res.ID,
	)
	return err
}

func (r *resourceRepository) ListByStatus(ctx context.Context, status domain.ResourceStatus) ([]domain.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE status = $1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []domain.Resource
	for rows.Next() {
		var res domain.Resource
		if err := rows.Scan(
			&res.ID, &res.Name, &res.Description, &res.Type, &res.Status, &res.PricingModel, &res.PricingUnit,
			&res.Rate, &res.RequiresApproval, &res.MaxReservationDays, &res.AdvanceBookingDays, &res.CreatedOn, &res.UpdatedOn,
		); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}
