package valuation

import (
	"fmt"

	"netita/server/internal/models"
)

// AreaInsights writes a short summary of the district's market.
func AreaInsights(district string, metrics models.DistrictMetrics) string {
	avgPrice := roundHalfUp(orDefault(metrics.AvgPricePerM2, 0))
	avgRent := roundHalfUp(orDefault(metrics.AvgRentPerM2, 0))
	growth := orDefault(metrics.GrowthPctYoY, 0)
	demand := clamp(orDefault(metrics.DemandIndex, defaultIndex), 0, 100)
	liquidity := clamp(orDefault(metrics.LiquidityIndex, defaultIndex), 0, 100)

	return fmt.Sprintf(
		"%s shows %s demand with %s liquidity. Typical pricing is around %.0f €/m², with average rents near %.0f €/m². Recent growth is approximately %.1f%% YoY.",
		district, demandLabel(demand), liquidityLabel(liquidity), avgPrice, avgRent, growth,
	)
}

func demandLabel(index float64) string {
	switch {
	case index >= 75:
		return "high"
	case index >= 55:
		return "steady"
	default:
		return "mixed"
	}
}

func liquidityLabel(index float64) string {
	switch {
	case index >= 75:
		return "high"
	case index >= 55:
		return "moderate"
	default:
		return "lower"
	}
}
