package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"communityshare-backend/internal/domain"
	"communityshare-backend/internal/logger"
	"communityshare-backend/internal/repository"
)

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	usageRepo    repository.UsageLogRepository
	resourceRepo repository.ResourceRepository
	userRepo     repository.UserRepository
	emailSvc     EmailService
	noteRepo     repository.NotificationRepository
	dueInDays    int
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	usageRepo repository.UsageLogRepository,
	resourceRepo repository.ResourceRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	noteRepo repository.NotificationRepository,
	dueInDays int,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		usageRepo:    usageRepo,
		resourceRepo: resourceRepo,
		userRepo:     userRepo,
		emailSvc:     emailSvc,
		noteRepo:     noteRepo,
		dueInDays:    dueInDays,
	}
}

func (s *invoiceService) GenerateForPeriod(ctx context.Context, periodStart, periodEnd time.Time, generatedBy int32, now time.Time) ([]domain.Invoice, error) {
	runID := uuid.NewString()
	logger.Info("invoice generation started",
		"run_id", runID, "period_start", periodStart.Format("2006-01-02"), "period_end", periodEnd.Format("2006-01-02"))

	// Logs arrive ordered by user then checked_out_at, so grouping preserves
	// a deterministic item order per invoice.
	logs, err := s.usageRepo.ListBillableUninvoiced(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("select uninvoiced usage: %w", err)
	}

	resources := map[int32]*domain.Resource{}
	var invoices []domain.Invoice

	var current *domain.Invoice
	flush := func() error {
		if current == nil {
			return nil
		}
		current.RecalculateTotals()
		if err := s.invoiceRepo.CreateWithItems(ctx, current); err != nil {
			if rej, ok := domain.AsRejection(err); ok {
				// A concurrent run already billed this usage; skip the member
				// rather than failing the whole batch.
				logger.Warn("invoice skipped", "run_id", runID, "user_id", current.UserID, "reason", rej.Code)
				current = nil
				return nil
			}
			return err
		}
		invoices = append(invoices, *current)
		current = nil
		return nil
	}

	for i := range logs {
		log := &logs[i]
		res, ok := resources[log.ResourceID]
		if !ok {
			res, err = s.resourceRepo.GetByID(ctx, log.ResourceID)
			if err != nil {
				return nil, fmt.Errorf("load resource %d: %w", log.ResourceID, err)
			}
			resources[log.ResourceID] = res
		}

		if current == nil || current.UserID != log.UserID {
			if err := flush(); err != nil {
				return nil, err
			}
			dueDate := now.AddDate(0, 0, s.dueInDays)
			current = &domain.Invoice{
				UserID:          log.UserID,
				Status:          domain.InvoiceStatusDraft,
				PeriodStart:     periodStart,
				PeriodEnd:       periodEnd,
				Adjustments:     decimal.Zero,
				DueDate:         &dueDate,
				GeneratedBy:     &generatedBy,
				GenerationRunID: runID,
				CreatedOn:       now,
			}
		}
		current.Items = append(current.Items, deriveInvoiceItem(log, res))
	}
	if err := flush(); err != nil {
		return nil, err
	}

	logger.Info("invoice generation finished", "run_id", runID, "invoices", len(invoices), "usage_logs", len(logs))
	return invoices, nil
}

func (s *invoiceService) Preview(ctx context.Context, userID int32, periodStart, periodEnd time.Time) (*InvoicePreview, error) {
	logs, err := s.usageRepo.ListBillableUninvoicedByUser(ctx, userID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	preview := &InvoicePreview{UserID: userID, Subtotal: decimal.Zero}
	resources := map[int32]*domain.Resource{}
	for i := range logs {
		log := &logs[i]
		res, ok := resources[log.ResourceID]
		if !ok {
			res, err = s.resourceRepo.GetByID(ctx, log.ResourceID)
			if err != nil {
				return nil, fmt.Errorf("load resource %d: %w", log.ResourceID, err)
			}
			resources[log.ResourceID] = res
		}
		item := deriveInvoiceItem(log, res)
		preview.Items = append(preview.Items, item)
		preview.Subtotal = preview.Subtotal.Add(item.Amount)
	}
	return preview, nil
}

func (s *invoiceService) Send(ctx context.Context, invoiceID int32, now time.Time) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanSend() {
		return nil, domain.Rejectf(domain.RejectInvalidTransition, "cannot send a %s invoice", inv.Status)
	}
	if len(inv.Items) == 0 {
		return nil, domain.Rejectf(domain.RejectInvoiceNoItems, "invoice %s has no items", inv.InvoiceNumber)
	}

	inv.Status = domain.InvoiceStatusSent
	inv.SentAt = &now
	if inv.DueDate == nil {
		dueDate := now.AddDate(0, 0, s.dueInDays)
		inv.DueDate = &dueDate
	}
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	logger.Info("invoice sent", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber, "total", inv.Total)
	if member, err := s.userRepo.GetByID(ctx, inv.UserID); err == nil {
		_ = s.emailSvc.SendInvoiceSent(ctx, member.Email, member.Name, inv.InvoiceNumber, inv.Total, inv.DueDate)
		_ = s.noteRepo.Create(ctx, &domain.Notification{
			UserID:  member.ID,
			Title:   "Invoice Sent",
			Message: fmt.Sprintf("Invoice %s for %s is ready", inv.InvoiceNumber, inv.Total.StringFixed(2)),
			Attributes: map[string]string{
				"type":       "INVOICE_SENT",
				"invoice_id": fmt.Sprintf("%d", inv.ID),
			},
		})
	}
	return inv, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, invoiceID int32, now time.Time) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanMarkPaid() {
		return nil, domain.Rejectf(domain.RejectInvalidTransition, "cannot mark a %s invoice paid", inv.Status)
	}

	inv.Status = domain.InvoiceStatusPaid
	inv.PaidAt = &now
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	logger.Info("invoice paid", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber)
	return inv, nil
}

func (s *invoiceService) MarkOverdueInvoices(ctx context.Context, now time.Time) (int, error) {
	pastDue, err := s.invoiceRepo.ListSentPastDue(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range pastDue {
		inv := &pastDue[i]
		if !inv.Status.CanMarkOverdue() {
			continue
		}
		inv.Status = domain.InvoiceStatusOverdue
		if err := s.invoiceRepo.Update(ctx, inv); err != nil {
			logger.Error("failed to mark invoice overdue", "invoice_id", inv.ID, "error", err)
			continue
		}
		marked++

		if member, err := s.userRepo.GetByID(ctx, inv.UserID); err == nil {
			_ = s.emailSvc.SendInvoiceOverdue(ctx, member.Email, member.Name, inv.InvoiceNumber, inv.Total)
			_ = s.noteRepo.Create(ctx, &domain.Notification{
				UserID:  member.ID,
				Title:   "Invoice Overdue",
				Message: fmt.Sprintf("Invoice %s for %s is overdue", inv.InvoiceNumber, inv.Total.StringFixed(2)),
				Attributes: map[string]string{
					"type":       "INVOICE_OVERDUE",
					"invoice_id": fmt.Sprintf("%d", inv.ID),
				},
			})
		}
	}
	return marked, nil
}

func (s *invoiceService) Void(ctx context.Context, invoiceID int32) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanVoid() {
		return nil, domain.Rejectf(domain.RejectInvalidTransition, "cannot void a %s invoice", inv.Status)
	}

	inv.Status = domain.InvoiceStatusVoided
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	logger.Info("invoice voided", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber)
	return inv, nil
}

func (s *invoiceService) ApplyAdjustment(ctx context.Context, invoiceID int32, amount decimal.Decimal, reason string) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.Editable() {
		return nil, domain.Rejectf(domain.RejectInvoiceNotEditable, "invoice %s is %s", inv.InvoiceNumber, inv.Status)
	}

	// Adjustment replaces any previous value rather than accumulating.
	inv.Adjustments = amount
	inv.AdjustmentReason = reason
	inv.RecalculateTotals()
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) AddManualItem(ctx context.Context, invoiceID int32, description string, quantity decimal.Decimal, unit string, unitPrice decimal.Decimal) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.Editable() {
		return nil, domain.Rejectf(domain.RejectInvoiceNotEditable, "invoice %s is %s", inv.InvoiceNumber, inv.Status)
	}

	item := &domain.InvoiceItem{
		InvoiceID:   inv.ID,
		Description: description,
		Quantity:    quantity,
		Unit:        unit,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice),
	}
	if err := s.invoiceRepo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return s.recalculate(ctx, inv)
}

func (s *invoiceService) RemoveItem(ctx context.Context, invoiceID, itemID int32) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.Editable() {
		return nil, domain.Rejectf(domain.RejectInvoiceNotEditable, "invoice %s is %s", inv.InvoiceNumber, inv.Status)
	}

	if err := s.invoiceRepo.RemoveItem(ctx, invoiceID, itemID); err != nil {
		return nil, err
	}
	return s.recalculate(ctx, inv)
}

func (s *invoiceService) Get(ctx context.Context, invoiceID int32) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, invoiceID)
}

func (s *invoiceService) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Invoice, int32, error) {
	return s.invoiceRepo.ListByUser(ctx, userID, page, pageSize)
}

// recalculate reloads the item set and re-derives subtotal and total.
func (s *invoiceService) recalculate(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	items, err := s.invoiceRepo.ListItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	inv.RecalculateTotals()
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

var decimalOne = decimal.NewFromInt(1)

// deriveInvoiceItem maps one usage log onto a billable line. The amount
// prefers the cost already calculated at check-in and falls back to
// quantity times unit price.
func deriveInvoiceItem(log *domain.UsageLog, res *domain.Resource) domain.InvoiceItem {
	quantity := decimalOne
	switch res.PricingUnit {
	case domain.PricingUnitMile, domain.PricingUnitKilometer:
		if log.DistanceUnits != nil {
			quantity = *log.DistanceUnits
		}
	case domain.PricingUnitHour:
		if log.DurationHours != nil {
			quantity = *log.DurationHours
		}
	case domain.PricingUnitDay:
		if log.DurationHours != nil {
			days := log.DurationHours.Div(decimal.NewFromInt(24)).Ceil()
			if days.LessThan(decimalOne) {
				days = decimalOne
			}
			quantity = days
		}
	}

	amount := quantity.Mul(res.Rate)
	if log.CalculatedCost != nil {
		amount = *log.CalculatedCost
	}

	usageLogID := log.ID
	return domain.InvoiceItem{
		UsageLogID:  &usageLogID,
		Description: fmt.Sprintf("%s usage on %s", res.Name, log.CheckedOutAt.Format("2006-01-02")),
		Quantity:    quantity,
		Unit:        res.PricingUnit.Label(),
		UnitPrice:   res.Rate,
		Amount:      amount,
	}
}
