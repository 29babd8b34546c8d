package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netita/server/internal/models"
)

func TestComputePropertyStats(t *testing.T) {
	tests := []struct {
		name       string
		properties []models.Property
		expected   models.PropertyStats
	}{
		{
			name:     "empty catalog",
			expected: models.PropertyStats{Count: 0},
		},
		{
			name: "odd count",
			properties: []models.Property{
				{Price: 300000, Sqft: 1500},
				{Price: 100000, Sqft: 500},
				{Price: 200000, Sqft: 1000},
			},
			expected: models.PropertyStats{
				Count:           3,
				AvgPrice:        ptr(200000.0),
				MedianPrice:     ptr(200000.0),
				AvgSqft:         ptr(1000.0),
				AvgPricePerSqft: ptr(200.0),
			},
		},
		{
			name: "even count and zero size",
			properties: []models.Property{
				{Price: 400000, Sqft: 2000},
				{Price: 100000, Sqft: 0},
				{Price: 250000, Sqft: 1000},
				{Price: 150000, Sqft: 600},
			},
			expected: models.PropertyStats{
				Count:           4,
				AvgPrice:        ptr(225000.0),
				MedianPrice:     ptr(200000.0),
				AvgSqft:         ptr(900.0),
				AvgPricePerSqft: ptr(700.0 / 3),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePropertyStats(tt.properties)
			assert.Equal(t, tt.expected.Count, got.Count)
			assertOptional(t, tt.expected.AvgPrice, got.AvgPrice)
			assertOptional(t, tt.expected.MedianPrice, got.MedianPrice)
			assertOptional(t, tt.expected.AvgSqft, got.AvgSqft)
			assertOptional(t, tt.expected.AvgPricePerSqft, got.AvgPricePerSqft)
		})
	}
}

func TestComputePropertyStats_DoesNotReorderInput(t *testing.T) {
	props := []models.Property{{Price: 3}, {Price: 1}, {Price: 2}}
	ComputePropertyStats(props)
	assert.Equal(t, 3.0, props[0].Price)
}

func assertOptional(t *testing.T, expected, actual *float64) {
	t.Helper()
	if expected == nil {
		assert.Nil(t, actual)
		return
	}
	require.NotNil(t, actual)
	assert.InDelta(t, *expected, *actual, 1e-9)
}
