package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a referenced entity does not exist. Repositories
// map sql.ErrNoRows to this so callers can translate it to a 404 at the edge.
var ErrNotFound = errors.New("entity not found")

// RejectionCode identifies why a business operation was refused.
type RejectionCode string

const (
	RejectResourceNotReservable RejectionCode = "RESOURCE_NOT_RESERVABLE"
	RejectStartNotInFuture      RejectionCode = "START_NOT_IN_FUTURE"
	RejectSlotUnavailable       RejectionCode = "SLOT_UNAVAILABLE"
	RejectDurationPolicy        RejectionCode = "DURATION_POLICY_VIOLATED"
	RejectAdvanceBookingPolicy  RejectionCode = "ADVANCE_BOOKING_EXCEEDED"
	RejectInvalidTransition     RejectionCode = "INVALID_TRANSITION"
	RejectCheckOutWindow        RejectionCode = "OUTSIDE_CHECKOUT_WINDOW"
	RejectUsageLogExists        RejectionCode = "USAGE_LOG_EXISTS"
	RejectReadingOrder          RejectionCode = "END_READING_BELOW_START"
	RejectCheckInOrder          RejectionCode = "CHECK_IN_BEFORE_CHECK_OUT"
	RejectInvoiceNotEditable    RejectionCode = "INVOICE_NOT_EDITABLE"
	RejectInvoiceNoItems        RejectionCode = "INVOICE_HAS_NO_ITEMS"
	RejectUsageAlreadyInvoiced  RejectionCode = "USAGE_ALREADY_INVOICED"
)

// Rejection is an expected, recoverable business-rule refusal. It satisfies
// the error interface so it travels on the normal error path, but callers
// distinguish it from infrastructure failures with AsRejection.
type Rejection struct {
	Code   RejectionCode
	Detail string
}

func (r Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Code)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Detail)
}

// Rejectf builds a Rejection with a formatted detail message.
func Rejectf(code RejectionCode, format string, args ...any) Rejection {
	return Rejection{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// AsRejection reports whether err is a business-rule rejection and returns it.
func AsRejection(err error) (Rejection, bool) {
	var r Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return Rejection{}, false
}
