package models

import "time"

// Group represents a slug-addressed category that posts may belong to.
// The slug is fixed at creation time.
type Group struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`

	// Relationships
	Posts []Post `gorm:"foreignKey:GroupID" json:"posts,omitempty"`
}
