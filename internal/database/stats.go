package database

import (
	"sort"

	"netita/server/internal/models"
)

// GetPropertyStats aggregates the whole catalog.
func (d *Database) GetPropertyStats() (models.PropertyStats, error) {
	properties, err := d.GetAllProperties()
	if err != nil {
		return models.PropertyStats{}, err
	}
	return ComputePropertyStats(properties), nil
}

// ComputePropertyStats returns count, mean and median price, mean size and mean price per
// sqft. Price per sqft only uses properties with a positive size.
func ComputePropertyStats(properties []models.Property) models.PropertyStats {
	prices := make([]float64, 0, len(properties))
	sizes := make([]float64, 0, len(properties))
	var perSqft []float64

	for _, p := range properties {
		prices = append(prices, p.Price)
		sizes = append(sizes, p.Sqft)
		if p.Sqft > 0 {
			perSqft = append(perSqft, p.Price/p.Sqft)
		}
	}

	return models.PropertyStats{
		Count:           len(properties),
		AvgPrice:        average(prices),
		MedianPrice:     median(prices),
		AvgSqft:         average(sizes),
		AvgPricePerSqft: average(perSqft),
	}
}

func average(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}

func median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	m := sorted[mid]
	if len(sorted)%2 == 0 {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}
