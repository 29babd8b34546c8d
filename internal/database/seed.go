package database

import (
	"encoding/json"
	"fmt"
	"os"

	"gorm.io/gorm"

	"netita/server/internal/models"
)

// SeedProperties fills an empty catalog from a JSON array file. It returns how many
// properties were inserted; a non-empty catalog is left alone.
func (d *Database) SeedProperties(path string) (int, error) {
	var count int64
	if err := d.db.Model(&models.Property{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed []models.Property
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i := range seed {
		seed[i].Images = cleanList(seed[i].Images)
		seed[i].Amenities = cleanList(seed[i].Amenities)
	}
	if len(seed) == 0 {
		return 0, nil
	}

	err = d.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&seed, 100).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert seed properties: %w", err)
	}

	d.logger.WithField("count", len(seed)).Info("Seeded property catalog")
	return len(seed), nil
}
