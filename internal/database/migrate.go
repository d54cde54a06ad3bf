package database

import (
	"fmt"

	"github.com/foodgram/backend/pkg/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table of the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
