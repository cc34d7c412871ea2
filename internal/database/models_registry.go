package database

import (
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// RegisteredModels returns every model the schema consists of, in migration
// order (referenced tables first).
func RegisteredModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Follow{},
	}
}

// Migrate applies the schema for all registered models. The unique indexes
// on users.token_identifier, users.username and (follower_id, following_id)
// are the storage-level backstop for the application's uniqueness checks.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(RegisteredModels()...)
}
