package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"vnpgate/internal/models"
)

// Migrate ensures the order and callback-log tables exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Order{},
		&models.CallbackLog{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
