package repository

import (
	"gorm.io/gorm"

	"veriflow/internal/domain"
)

// Migrate creates or updates the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&domain.DocumentRecord{},
		&domain.VerificationRecord{},
		&domain.DocumentCounter{},
		&domain.Notification{},
	)
}
