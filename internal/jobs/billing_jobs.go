package jobs

import (
	"context"
	"time"

	"communityshare-backend/internal/logger"
)

// GenerateMonthlyInvoices bills the previous calendar month. One draft
// invoice is created per member with billable usage in the period.
func (jr *JobRunner) GenerateMonthlyInvoices() {
	jr.runWithRecovery("GenerateMonthlyInvoices", func() {
		ctx := context.Background()
		now := time.Now().UTC()

		// Previous calendar month, inclusive of its last instant.
		firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		periodStart := firstOfThisMonth.AddDate(0, -1, 0)
		periodEnd := firstOfThisMonth.Add(-time.Nanosecond)

		invoices, err := jr.invoiceSvc.GenerateForPeriod(ctx, periodStart, periodEnd, jr.config.Billing.SystemActorID, now)
		if err != nil {
			logger.Error("Failed to generate monthly invoices", "error", err)
			return
		}

		logger.Info("Monthly invoices generated",
			"period_start", periodStart.Format("2006-01-02"),
			"period_end", periodEnd.Format("2006-01-02"),
			"invoices", len(invoices))
	})
}

// MarkOverdueInvoices flips sent invoices past their due date to overdue and
// notifies the affected members.
func (jr *JobRunner) MarkOverdueInvoices() {
	jr.runWithRecovery("MarkOverdueInvoices", func() {
		ctx := context.Background()

		marked, err := jr.invoiceSvc.MarkOverdueInvoices(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to mark overdue invoices", "error", err)
			return
		}

		logger.Info("Overdue invoices marked", "count", marked)
	})
}
