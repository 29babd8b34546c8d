package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"netita/server/internal/apperr"
	"netita/server/internal/models"
)

const CodeValidationFailed = "VALIDATION_FAILED"

// ErrNotFound is returned when no property has the requested id.
var ErrNotFound = errors.New("property not found")

// GetAllProperties returns the catalog ordered by id.
func (d *Database) GetAllProperties() ([]models.Property, error) {
	var properties []models.Property
	if err := d.db.Order("id").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

func (d *Database) GetProperty(id int64) (*models.Property, error) {
	var p models.Property
	err := d.db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property %d: %w", id, err)
	}
	return &p, nil
}

// CreateProperty validates input and stores it under the next free id.
func (d *Database) CreateProperty(input models.PropertyInput) (*models.Property, error) {
	p, err := NewProperty(input)
	if err != nil {
		return nil, err
	}
	if err := d.db.Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"id":      p.ID,
		"address": p.Address,
	}).Info("Created property")
	return p, nil
}

// UpdateProperty applies the fields present in patch and saves the result.
func (d *Database) UpdateProperty(id int64, patch models.PropertyPatch) (*models.Property, error) {
	var updated *models.Property
	err := d.db.Transaction(func(tx *gorm.DB) error {
		var p models.Property
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		ApplyPatch(&p, patch)
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		updated = &p
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update property %d: %w", id, err)
	}
	return updated, nil
}

// DeleteProperty removes a property and returns what was deleted.
func (d *Database) DeleteProperty(id int64) (*models.Property, error) {
	var deleted models.Property
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Delete(&models.Property{}, id).Error
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete property %d: %w", id, err)
	}

	d.logger.WithField("id", id).Info("Deleted property")
	return &deleted, nil
}

// NewProperty checks a create payload. All problems are reported at once, joined by "; ".
func NewProperty(input models.PropertyInput) (*models.Property, error) {
	p := &models.Property{
		Address:     strings.TrimSpace(input.Address),
		Location:    strings.TrimSpace(input.Location),
		Image:       strings.TrimSpace(input.Image),
		Images:      cleanList(input.Images),
		YearBuilt:   input.YearBuilt,
		Type:        strings.TrimSpace(input.Type),
		Description: strings.TrimSpace(input.Description),
		Amenities:   cleanList(input.Amenities),
		ListingDate: strings.TrimSpace(input.ListingDate),
	}

	var problems []string
	if p.Address == "" {
		problems = append(problems, "address is required")
	}
	if p.Location == "" {
		problems = append(problems, "location is required")
	}
	if input.Price == nil {
		problems = append(problems, "price must be a number")
	}
	if input.Bedrooms == nil {
		problems = append(problems, "bedrooms must be a number")
	}
	if input.Bathrooms == nil {
		problems = append(problems, "bathrooms must be a number")
	}
	if input.Sqft == nil {
		problems = append(problems, "sqft must be a number")
	}
	if p.Image == "" {
		problems = append(problems, "image is required")
	}
	if len(problems) > 0 {
		return nil, apperr.Validation(CodeValidationFailed, strings.Join(problems, "; "))
	}

	p.Price = *input.Price
	p.Bedrooms = *input.Bedrooms
	p.Bathrooms = *input.Bathrooms
	p.Sqft = *input.Sqft
	return p, nil
}

// ApplyPatch copies the fields present in patch onto p. Strings are trimmed and lists drop
// blank entries; a null list becomes empty.
func ApplyPatch(p *models.Property, patch models.PropertyPatch) {
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	setString(&p.Address, patch.Address)
	setString(&p.Location, patch.Location)
	setString(&p.Image, patch.Image)
	setString(&p.Type, patch.Type)
	setString(&p.Description, patch.Description)
	setString(&p.ListingDate, patch.ListingDate)

	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Bedrooms != nil {
		p.Bedrooms = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		p.Bathrooms = *patch.Bathrooms
	}
	if patch.Sqft != nil {
		p.Sqft = *patch.Sqft
	}
	if patch.YearBuilt != nil {
		p.YearBuilt = patch.YearBuilt
	}
	if patch.Images.Present {
		p.Images = cleanList(patch.Images.Values)
	}
	if patch.Amenities.Present {
		p.Amenities = cleanList(patch.Amenities.Values)
	}
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
