package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an operating cost line (supplies, rent, utilities, salaries)
// used by the monthly report breakdown.
type Expense struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Category   string          `gorm:"not null;index" json:"category"`
	Label      string          `gorm:"not null" json:"label"`
	Amount     decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	IncurredAt time.Time       `gorm:"not null;index" json:"incurred_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
