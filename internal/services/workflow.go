package services

import (
	"errors"
	"time"

	"github.com/detailops/backoffice/internal/models"
)

var (
	ErrUnknownStatus         = errors.New("unknown_status")
	ErrTerminalStatus        = errors.New("cancelled_is_terminal")
	ErrPaymentMethodRequired = errors.New("payment_method_required")
	ErrInvalidPaymentMethod  = errors.New("invalid_payment_method")
)

// Transition moves inv to the next status, enforcing the workflow rules:
// cancelled is terminal, paid and partially_paid require a payment method,
// and entering paid stamps the due date to today. The invoice is only
// mutated once every check has passed — on error the caller's copy is
// untouched and the stored status stands.
func (s *InvoiceService) Transition(inv *models.Invoice, next, paymentMethod string, now time.Time) error {
	canonical, ok := models.ParseInvoiceStatus(next)
	if !ok {
		return ErrUnknownStatus
	}
	if inv.Status == models.StatusCancelled && canonical != models.StatusCancelled {
		return ErrTerminalStatus
	}
	needsPayment := canonical == models.StatusPaid || canonical == models.StatusPartiallyPaid
	if needsPayment {
		if paymentMethod == "" {
			return ErrPaymentMethodRequired
		}
		if !models.ValidPaymentMethod(paymentMethod) {
			return ErrInvalidPaymentMethod
		}
	}

	inv.Status = canonical
	if needsPayment {
		inv.PaymentMethod = &paymentMethod
	}
	if canonical == models.StatusPaid {
		// Overwrites any previously chosen due date, date-only.
		y, m, d := now.Date()
		inv.DueDate = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
	return nil
}
