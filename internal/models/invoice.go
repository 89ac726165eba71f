package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses. The dashboard historically used both "partial" and
// "partially_paid"; ParseInvoiceStatus folds the legacy spelling into the
// canonical one so the rest of the code only ever sees these constants.
const (
	StatusDraft         = "draft"
	StatusPending       = "pending"
	StatusPaid          = "paid"
	StatusPartiallyPaid = "partially_paid"
	StatusOverdue       = "overdue"
	StatusCancelled     = "cancelled"
)

// Payment methods accepted on paid / partially_paid transitions.
const (
	PayCash         = "cash"
	PayCard         = "card"
	PayCreditCard   = "credit_card"
	PayBankTransfer = "bank_transfer"
	PayUPI          = "upi"
	PayWallet       = "wallet"
	PayCheck        = "check"
)

// ParseInvoiceStatus normalizes a raw status string to its canonical form.
// The legacy "partial" spelling maps to partially_paid. ok is false for
// anything outside the known vocabulary.
func ParseInvoiceStatus(raw string) (status string, ok bool) {
	switch raw {
	case StatusDraft, StatusPending, StatusPaid, StatusPartiallyPaid, StatusOverdue, StatusCancelled:
		return raw, true
	case "partial":
		return StatusPartiallyPaid, true
	}
	return "", false
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PayCash, PayCard, PayCreditCard, PayBankTransfer, PayUPI, PayWallet, PayCheck:
		return true
	}
	return false
}

// Invoice is a billable document owned by one customer, optionally linked to
// the booking it bills for. Totals are always recomputed server-side from the
// items; the stored amounts are rounded to 2dp at persistence time.
type Invoice struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Number         string          `gorm:"size:32;uniqueIndex" json:"number"`
	CustomerID     uint            `gorm:"not null;index" json:"customer_id"`
	Customer       Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	BookingID      *uint           `gorm:"index" json:"booking_id,omitempty"`
	Items          []LineItem      `gorm:"foreignKey:InvoiceID" json:"items"`
	Subtotal       decimal.Decimal `gorm:"type:numeric" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric" json:"total_amount"`
	Status         string          `gorm:"not null;default:'draft';index" json:"status"`
	DueDate        time.Time       `gorm:"not null" json:"due_date"`
	PaymentMethod  *string         `json:"payment_method,omitempty"`
	Currency       string          `gorm:"not null;default:'USD'" json:"currency"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// LineItem is one priced row on an invoice. When VariantID is set the
// description and unit price are sourced from the catalog variant.
type LineItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"index" json:"invoice_id"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric;not null" json:"total_price"`
	VariantID   *uint           `gorm:"index" json:"variant_id,omitempty"`
}
