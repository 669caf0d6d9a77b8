package models

import "time"

// Post represents a text entry published by a user.
// CreatedAt is the publication date: assigned by the server on create
// and never modified afterwards, including on edits.
type Post struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"pub_date"`
	Text      string    `gorm:"not null" json:"text"`
	Image     string    `json:"image,omitempty"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	GroupID   *uint     `gorm:"index" json:"group_id,omitempty"`

	// Relationships
	Author   User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}
