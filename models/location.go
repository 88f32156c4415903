package models

import "time"

type Location struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Country     string    `gorm:"size:100;not null;index" json:"country"`
	State       string    `gorm:"size:100" json:"state"`
	City        string    `gorm:"size:100" json:"city"`
	Latitude    *float64  `gorm:"type:decimal(9,6)" json:"latitude"`
	Longitude   *float64  `gorm:"type:decimal(9,6)" json:"longitude"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	ToursCount int64 `gorm:"-" json:"tours_count"`
}
