package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Inventory catalog models. A Product groups sellable variants
// (size/finish/package) each carrying its own SKU, price, and stock.
type Product struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"not null;index" json:"name"`
	Category    string           `gorm:"index" json:"category"` // e.g. "wax", "interior", "service"
	Description string           `json:"description"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type ProductVariant struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	SKU         string          `gorm:"size:40;not null;uniqueIndex" json:"sku"`
	VariantName string          `gorm:"not null" json:"variant_name"`
	Price       decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"` // stock on hand
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
