package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: User and Group must be migrated before Post, which references both
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Group{},
		&Post{},
		&Comment{},
		&Follow{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
