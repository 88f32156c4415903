package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TourID    uint      `gorm:"not null;uniqueIndex:idx_review_tour_user" json:"tour_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_tour_user" json:"user_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User   User        `gorm:"foreignKey:UserID" json:"-"`
	Author UserSummary `gorm:"-" json:"user"`
}

func (r *Review) AfterFind(tx *gorm.DB) error {
	r.Author = r.User.Summary()
	r.Author.ID = r.UserID
	return nil
}
