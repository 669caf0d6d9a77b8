package models

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	err := AutoMigrate(db)
	if err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	// Verify tables exist by checking if we can query them
	tables := []string{"users", "groups", "posts", "comments", "follows"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestUserModel(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	user := User{
		Username:     "sarah",
		Email:        "connor.s@skynet.com",
		PasswordHash: "hashed_password",
	}

	result := db.Create(&user)
	if result.Error != nil {
		t.Fatalf("Failed to create user: %v", result.Error)
	}

	if user.ID == 0 {
		t.Error("Expected user ID to be set after create")
	}

	// Test unique username constraint
	user2 := User{
		Username:     "sarah",
		Email:        "other@skynet.com",
		PasswordHash: "another_hash",
	}
	if err := db.Create(&user2).Error; err == nil {
		t.Error("Expected duplicate username to fail")
	}
}

func TestPostModel(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	user := User{Username: "sarah", Email: "s@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	// Group reference is optional
	post := Post{Text: "hello", AuthorID: user.ID}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create post without group: %v", err)
	}
	if post.CreatedAt.IsZero() {
		t.Error("Expected pub date to be set on create")
	}
	if post.GroupID != nil {
		t.Error("Expected nil group reference")
	}

	group := Group{Title: "Cats", Slug: "cats"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}

	post2 := Post{Text: "in a group", AuthorID: user.ID, GroupID: &group.ID}
	if err := db.Create(&post2).Error; err != nil {
		t.Fatalf("Failed to create post with group: %v", err)
	}

	var loaded Post
	if err := db.Preload("Group").First(&loaded, post2.ID).Error; err != nil {
		t.Fatalf("Failed to load post: %v", err)
	}
	if loaded.Group == nil || loaded.Group.Slug != "cats" {
		t.Error("Expected group to be preloaded")
	}
}

func TestGroupSlugUnique(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	if err := db.Create(&Group{Title: "Cats", Slug: "cats"}).Error; err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}
	if err := db.Create(&Group{Title: "More Cats", Slug: "cats"}).Error; err == nil {
		t.Error("Expected duplicate slug to fail")
	}
}

func TestFollowUniquePair(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	follower := User{Username: "follower", Email: "f@example.com", PasswordHash: "x"}
	followed := User{Username: "followed", Email: "d@example.com", PasswordHash: "x"}
	db.Create(&follower)
	db.Create(&followed)

	if err := db.Create(&Follow{FollowerID: follower.ID, FollowedID: followed.ID}).Error; err != nil {
		t.Fatalf("Failed to create follow: %v", err)
	}

	// The composite unique index rejects a second identical pair
	if err := db.Create(&Follow{FollowerID: follower.ID, FollowedID: followed.ID}).Error; err == nil {
		t.Error("Expected duplicate follow pair to fail")
	}

	// The reverse direction is a different pair
	if err := db.Create(&Follow{FollowerID: followed.ID, FollowedID: follower.ID}).Error; err != nil {
		t.Errorf("Expected reverse follow to succeed: %v", err)
	}
}
