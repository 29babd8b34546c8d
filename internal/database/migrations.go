package database

import (
	"fmt"

	"netita/server/internal/models"
)

func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&models.Property{}); err != nil {
		return fmt.Errorf("failed to migrate properties table: %w", err)
	}
	return nil
}
