package services

import (
	"errors"
	"testing"
	"time"

	"github.com/detailops/backoffice/internal/models"
)

func draftInvoice() *models.Invoice {
	return &models.Invoice{Status: models.StatusDraft, DueDate: time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)}
}

func TestTransitionPaidRequiresMethod(t *testing.T) {
	svc := NewInvoiceService()
	inv := draftInvoice()
	before := *inv
	err := svc.Transition(inv, models.StatusPaid, "", time.Now())
	if !errors.Is(err, ErrPaymentMethodRequired) {
		t.Fatalf("expected payment method error, got %v", err)
	}
	if inv.Status != before.Status || !inv.DueDate.Equal(before.DueDate) || inv.PaymentMethod != nil {
		t.Fatalf("invoice mutated on rejected transition: %+v", inv)
	}
}

func TestTransitionPaidInvalidMethod(t *testing.T) {
	svc := NewInvoiceService()
	inv := draftInvoice()
	if err := svc.Transition(inv, models.StatusPaid, "barter", time.Now()); !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("expected invalid method error, got %v", err)
	}
	if inv.Status != models.StatusDraft {
		t.Fatalf("status mutated: %s", inv.Status)
	}
}

func TestTransitionPaidStampsDueDate(t *testing.T) {
	svc := NewInvoiceService()
	inv := draftInvoice()
	now := time.Date(2026, 8, 28, 15, 42, 7, 0, time.UTC)
	if err := svc.Transition(inv, models.StatusPaid, models.PayCard, now); err != nil {
		t.Fatalf("transition: %v", err)
	}
	want := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	if !inv.DueDate.Equal(want) {
		t.Fatalf("due date = %s, want date-only today %s", inv.DueDate, want)
	}
	if inv.PaymentMethod == nil || *inv.PaymentMethod != models.PayCard {
		t.Fatalf("payment method not recorded: %v", inv.PaymentMethod)
	}
}

func TestTransitionPartialSpellingNormalized(t *testing.T) {
	svc := NewInvoiceService()
	inv := draftInvoice()
	if err := svc.Transition(inv, "partial", models.PayUPI, time.Now()); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if inv.Status != models.StatusPartiallyPaid {
		t.Fatalf("status = %s, want partially_paid", inv.Status)
	}
}

func TestTransitionCancelledIsTerminal(t *testing.T) {
	svc := NewInvoiceService()
	inv := draftInvoice()
	if err := svc.Transition(inv, models.StatusCancelled, "", time.Now()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	for _, next := range []string{models.StatusDraft, models.StatusPending, models.StatusPaid, models.StatusOverdue} {
		method := ""
		if next == models.StatusPaid {
			method = models.PayCash
		}
		if err := svc.Transition(inv, next, method, time.Now()); !errors.Is(err, ErrTerminalStatus) {
			t.Fatalf("cancelled -> %s allowed: %v", next, err)
		}
	}
	// cancelled -> cancelled stays a no-op, not an error
	if err := svc.Transition(inv, models.StatusCancelled, "", time.Now()); err != nil {
		t.Fatalf("cancel again: %v", err)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc := NewInvoiceService()
	inv := draftInvoice()
	if err := svc.Transition(inv, "archived", "", time.Now()); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected unknown status error, got %v", err)
	}
}

func TestTransitionPendingKeepsDueDate(t *testing.T) {
	svc := NewInvoiceService()
	inv := draftInvoice()
	due := inv.DueDate
	if err := svc.Transition(inv, models.StatusPending, "", time.Now()); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !inv.DueDate.Equal(due) {
		t.Fatalf("due date changed on pending: %s", inv.DueDate)
	}
}
