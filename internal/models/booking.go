package models

import "time"

// Booking statuses
const (
	BookingScheduled  = "scheduled"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
)

// Booking is a scheduled detailing job for one vehicle.
type Booking struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CustomerID  uint      `gorm:"not null;index" json:"customer_id"`
	Customer    Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	VehicleID   uint      `gorm:"not null;index" json:"vehicle_id"`
	Vehicle     Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Service     string    `gorm:"not null" json:"service"` // e.g. "Full exterior detail"
	ScheduledAt time.Time `gorm:"not null;index" json:"scheduled_at"`
	Status      string    `gorm:"not null;default:'scheduled'" json:"status"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidBookingStatus reports whether s is one of the booking states.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingScheduled, BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}
