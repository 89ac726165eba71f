package models

import "time"

// ShopSettings is the single business profile record: shown on invoices and
// report headers, and the source of the process-wide display currency.
type ShopSettings struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	TaxID     string `json:"tax_id"`
	Currency  string `gorm:"not null;default:'USD'" json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
