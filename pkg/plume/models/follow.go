package models

import "time"

// Follow represents a directed relation: the follower wants the
// followed author's posts in their personal feed. The composite unique
// index enforces one row per pair at the store, so concurrent duplicate
// follow requests cannot slip past an application-level existence check.
type Follow struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	FollowerID uint      `gorm:"not null;index;uniqueIndex:idx_follower_followed" json:"follower_id"`
	FollowedID uint      `gorm:"not null;index;uniqueIndex:idx_follower_followed" json:"followed_id"`

	// Relationships
	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followed User `gorm:"foreignKey:FollowedID" json:"followed,omitempty"`
}
