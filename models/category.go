package models

import "time"

// Category groups tours (hiking, kayaking, ...). Not to be confused with PostCategory.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	ToursCount int64 `gorm:"-" json:"tours_count"`
}

func (Category) TableName() string { return "tour_categories" }
