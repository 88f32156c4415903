package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DifficultyEasy     = "easy"
	DifficultyModerate = "moderate"
	DifficultyHard     = "hard"
	DifficultyExpert   = "expert"
)

// ValidDifficulty reports whether d is one of the known difficulty levels.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyModerate, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

type Tour struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Title           string          `gorm:"size:200;not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	CategoryID      uint            `gorm:"index;not null" json:"category_id"`
	LocationID      uint            `gorm:"index;not null" json:"location_id"`
	DurationDays    int             `gorm:"not null" json:"duration_days"`
	Difficulty      string          `gorm:"size:20;not null" json:"difficulty"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	MaxParticipants int             `gorm:"not null" json:"max_participants"`
	Image           string          `gorm:"size:255" json:"image"`
	Featured        bool            `gorm:"default:false;index" json:"featured"`
	Active          bool            `gorm:"default:true;index" json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Category Category   `gorm:"foreignKey:CategoryID" json:"category"`
	Location Location   `gorm:"foreignKey:LocationID" json:"location"`
	Dates    []TourDate `gorm:"foreignKey:TourID" json:"dates,omitempty"`
	Reviews  []Review   `gorm:"foreignKey:TourID" json:"reviews,omitempty"`

	AverageRating float64 `gorm:"-" json:"average_rating"`
	ReviewsCount  int64   `gorm:"-" json:"reviews_count"`
}
