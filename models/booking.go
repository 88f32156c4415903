package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func ValidBookingStatus(s string) bool {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// ReferenceLength is the number of characters in a booking reference.
const ReferenceLength = 8

type Booking struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           uint            `gorm:"index;not null" json:"user_id"`
	TourDateID       uint            `gorm:"index;not null" json:"tour_date_id"`
	Participants     int             `gorm:"not null" json:"participants"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Status           BookingStatus   `gorm:"size:20;not null;default:pending;index" json:"status"`
	BookingReference string          `gorm:"size:20;not null;uniqueIndex" json:"booking_reference"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	User     User     `gorm:"foreignKey:UserID" json:"-"`
	TourDate TourDate `gorm:"foreignKey:TourDateID" json:"tour_date"`
}
