package models

import (
	"time"

	"gorm.io/datatypes"
)

// TourDate is one scheduled run of a tour. AvailableSpots is only changed through the
// booking workflow's conditional updates.
type TourDate struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	TourID         uint           `gorm:"not null;uniqueIndex:idx_tour_start" json:"tour_id"`
	StartDate      datatypes.Date `gorm:"not null;uniqueIndex:idx_tour_start" json:"start_date"`
	EndDate        datatypes.Date `gorm:"not null" json:"end_date"`
	AvailableSpots int            `gorm:"not null;check:available_spots >= 0" json:"available_spots"`
	GuideID        *uint          `gorm:"index" json:"guide_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`

	Tour  *Tour `gorm:"foreignKey:TourID" json:"tour,omitempty"`
	Guide *User `gorm:"foreignKey:GuideID" json:"guide,omitempty"`
}
