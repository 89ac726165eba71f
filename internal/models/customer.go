package models

import "time"

// Customer directory models
type Customer struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null;index" json:"name"`
	Phone     string `gorm:"index" json:"phone"`
	Email     string `gorm:"index" json:"email"`
	Address   string `json:"address"`
	Notes     string `json:"notes"`
	Vehicles  []Vehicle `gorm:"foreignKey:CustomerID" json:"vehicles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Vehicle struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CustomerID uint   `gorm:"not null;index" json:"customer_id"`
	Make       string `gorm:"not null" json:"make"`
	Model      string `gorm:"not null" json:"model"`
	Plate      string `gorm:"index" json:"plate"`
	Year       int    `json:"year"`
	Color      string `json:"color"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
