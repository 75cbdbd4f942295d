package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "DRAFT"
	InvoiceStatusSent    InvoiceStatus = "SENT"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
	InvoiceStatusVoided  InvoiceStatus = "VOIDED"
)

// Editable: item and adjustment mutation is allowed only while Draft.
func (s InvoiceStatus) Editable() bool {
	return s == InvoiceStatusDraft
}

func (s InvoiceStatus) CanSend() bool {
	return s == InvoiceStatusDraft
}

func (s InvoiceStatus) CanMarkPaid() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

func (s InvoiceStatus) CanMarkOverdue() bool {
	return s == InvoiceStatusSent
}

// CanVoid: a bill can be written off while it is still a draft or out for
// payment, but not once settled.
func (s InvoiceStatus) CanVoid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue:
		return true
	}
	return false
}

// InvoiceItem is one billable line. Items derived from usage logs carry the
// source UsageLogID; manual corrections leave it nil.
type InvoiceItem struct {
	ID          int32           `json:"id"`
	InvoiceID   int32           `json:"invoice_id"`
	UsageLogID  *int32          `json:"usage_log_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedOn   time.Time       `json:"created_on"`
}

// Invoice is one member's bill for one billing period.
type Invoice struct {
	ID            int32         `json:"id"`
	UserID        int32         `json:"user_id"`
	InvoiceNumber string        `json:"invoice_number"`
	Status        InvoiceStatus `json:"status"`

	PeriodStart time.Time `json:"billing_period_start"`
	PeriodEnd   time.Time `json:"billing_period_end"`

	Subtotal         decimal.Decimal `json:"subtotal"`
	Adjustments      decimal.Decimal `json:"adjustments"`
	AdjustmentReason string          `json:"adjustment_reason,omitempty"`
	Total            decimal.Decimal `json:"total"`

	DueDate *time.Time `json:"due_date,omitempty"`
	SentAt  *time.Time `json:"sent_at,omitempty"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`

	GeneratedBy *int32 `json:"generated_by,omitempty"`
	// GenerationRunID correlates invoices produced by one generation run.
	GenerationRunID string `json:"generation_run_id,omitempty"`

	Items []InvoiceItem `json:"items,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// RecalculateTotals re-sums the current items into Subtotal and reapplies the
// standing adjustment into Total. Call after any item or adjustment mutation.
func (i *Invoice) RecalculateTotals() {
	subtotal := decimal.Zero
	for _, it := range i.Items {
		subtotal = subtotal.Add(it.Amount)
	}
	i.Subtotal = subtotal
	i.Total = subtotal.Add(i.Adjustments)
}
