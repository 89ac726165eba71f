package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records money received against an invoice. One row is written per
// successful paid / partially_paid transition.
type Payment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	InvoiceID uint            `gorm:"not null;index" json:"invoice_id"`
	Reference string          `gorm:"size:40;uniqueIndex" json:"reference"`
	Amount    decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Method    string          `gorm:"not null" json:"method"`
	Date      time.Time       `gorm:"not null" json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}
