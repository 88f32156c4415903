package models

import (
	"time"

	"gorm.io/gorm"
)

// PostCategory is a blog category; tours use Category.
type PostCategory struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Slug        string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	PostCount int64 `gorm:"-" json:"post_count"`
}

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	CategoryID  *uint     `gorm:"index" json:"category_id,omitempty"`
	Content     string    `gorm:"type:text" json:"content,omitempty"`
	Excerpt     string    `gorm:"size:500" json:"excerpt"`
	Image       string    `gorm:"size:255" json:"image"`
	IsPublished bool      `gorm:"default:false;index" json:"is_published"`
	Views       int64     `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Author     User          `gorm:"foreignKey:AuthorID" json:"-"`
	AuthorInfo UserSummary   `gorm:"-" json:"author"`
	Category   *PostCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (p *Post) AfterFind(tx *gorm.DB) error {
	p.AuthorInfo = p.Author.Summary()
	p.AuthorInfo.ID = p.AuthorID
	return nil
}

// BlogStats is the aggregate returned by the stats endpoint.
type BlogStats struct {
	TotalPosts      int64 `json:"total_posts"`
	TotalCategories int64 `json:"total_categories"`
	TotalViews      int64 `json:"total_views"`
}
