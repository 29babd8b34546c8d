package valuation

import (
	"fmt"
	"math"
	"strconv"

	"netita/server/internal/models"
)

// Deviation (in percent) at which a listing leaves the Fair band.
const classificationThreshold = 8.0

// AnalyzePrice compares the listing's price per m² with the district benchmark.
func AnalyzePrice(price, areaM2 float64, district string, metrics models.DistrictMetrics) models.PriceAnalysis {
	pricePerM2 := price / areaM2
	districtAvg := orDefault(metrics.AvgPricePerM2, pricePerM2)

	deviation := (pricePerM2 - districtAvg) / districtAvg * 100
	rounded := round2(deviation)

	direction := "above"
	if deviation < 0 {
		direction = "below"
	}

	return models.PriceAnalysis{
		PricePerM2:            int64(roundHalfUp(pricePerM2)),
		DistrictAvgPricePerM2: int64(roundHalfUp(districtAvg)),
		DeviationPct:          rounded,
		Classification:        Classify(rounded),
		Explanation: fmt.Sprintf(
			"Based on an estimated district average of %d €/m² in %s, this listing is %s%% %s the benchmark.",
			int64(roundHalfUp(districtAvg)), district,
			strconv.FormatFloat(math.Abs(rounded), 'f', -1, 64), direction,
		),
	}
}

// Classify buckets a deviation. The ±8% boundaries belong to the outer classes.
func Classify(deviationPct float64) models.Classification {
	switch {
	case deviationPct <= -classificationThreshold:
		return models.Undervalued
	case deviationPct >= classificationThreshold:
		return models.Overpriced
	default:
		return models.Fair
	}
}

func round2(n float64) float64 {
	return roundHalfUp(n*100) / 100
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(n float64) float64 {
	return math.Floor(n + 0.5)
}

func clamp(n, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, n))
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// orDefault treats zero and non-finite values as missing.
func orDefault(n, def float64) float64 {
	if n == 0 || !finite(n) {
		return def
	}
	return n
}
