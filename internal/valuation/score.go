package valuation

import (
	"strings"

	"netita/server/internal/models"
)

// Score weights in percent of the final score.
const (
	yieldWeight     = 35
	demandWeight    = 20
	liquidityWeight = 20
	growthWeight    = 15
	priceEdgeWeight = 10
)

// Benchmarks used when a district record leaves a field empty.
const (
	defaultRentPerM2 = 10.0
	defaultIndex     = 50.0
)

type scale struct {
	min, max float64
}

var (
	yieldScale     = scale{min: 2, max: 8}
	growthScale    = scale{min: 0, max: 8}
	priceEdgeScale = scale{min: -10, max: 20}
)

// normalize maps value linearly onto [0,100] and clamps. Non-finite input scores 0.
func (s scale) normalize(value float64) float64 {
	if !finite(value) || s.max == s.min {
		return 0
	}
	return clamp((value-s.min)/(s.max-s.min)*100, 0, 100)
}

// rentMultiplier adjusts the district rent for the kind of property.
func rentMultiplier(propertyType string) float64 {
	t := strings.ToLower(propertyType)
	switch {
	case strings.Contains(t, "studio"):
		return 1.1
	case strings.Contains(t, "office"):
		return 0.9
	case strings.Contains(t, "house"):
		return 0.95
	default:
		return 1.0
	}
}

// Score rates a listing as an investment on a 0-100 scale from gross yield, district demand,
// liquidity and growth, and the discount against the district benchmark.
func Score(price, areaM2 float64, metrics models.DistrictMetrics, propertyType string, analysis models.PriceAnalysis) int {
	rent := orDefault(metrics.AvgRentPerM2, defaultRentPerM2)
	growth := orDefault(metrics.GrowthPctYoY, 0)
	demand := orDefault(metrics.DemandIndex, defaultIndex)
	liquidity := orDefault(metrics.LiquidityIndex, defaultIndex)

	monthlyRent := rent * areaM2 * rentMultiplier(propertyType)
	grossYield := monthlyRent * 12 / price * 100

	priceEdge := 0.0
	if finite(analysis.DeviationPct) {
		priceEdge = -analysis.DeviationPct
	}

	weighted := yieldScale.normalize(grossYield)*yieldWeight +
		clamp(demand, 0, 100)*demandWeight +
		clamp(liquidity, 0, 100)*liquidityWeight +
		growthScale.normalize(growth)*growthWeight +
		priceEdgeScale.normalize(priceEdge)*priceEdgeWeight

	return int(roundHalfUp(clamp(weighted/100, 0, 100)))
}
