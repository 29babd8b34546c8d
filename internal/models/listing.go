package models

// Currency is the currency token detected next to a scraped price.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyBGN Currency = "BGN"
)

// ExtractedListing holds the fields recovered from a listing page. It is never persisted.
type ExtractedListing struct {
	Price         float64   `json:"price"`
	PriceCurrency *Currency `json:"price_currency"`
	AreaM2        float64   `json:"area_m2"`
	District      string    `json:"district"`
	PropertyType  string    `json:"property_type"`
	Floor         *int      `json:"floor"`
	YearBuilt     *int      `json:"year_built"`
}

// DistrictMetrics is a row of the district benchmark table.
type DistrictMetrics struct {
	Name           string  `json:"name"`
	AvgPricePerM2  float64 `json:"avg_price_per_m2"`
	AvgRentPerM2   float64 `json:"avg_rent_per_m2"`
	GrowthPctYoY   float64 `json:"growth_pct_yoy"`
	DemandIndex    float64 `json:"demand_index"`
	LiquidityIndex float64 `json:"liquidity_index"`
}

// MetricsTable is the on-disk shape of the district benchmark file.
type MetricsTable struct {
	Districts []DistrictMetrics `json:"districts"`
	Default   DistrictMetrics   `json:"default"`
}

type Classification string

const (
	Undervalued Classification = "Undervalued"
	Fair        Classification = "Fair"
	Overpriced  Classification = "Overpriced"
)

// PriceAnalysis compares a listing's price per m² with its district benchmark.
type PriceAnalysis struct {
	PricePerM2            int64          `json:"price_per_m2"`
	DistrictAvgPricePerM2 int64          `json:"district_avg_price_per_m2"`
	DeviationPct          float64        `json:"deviation_pct"`
	Classification        Classification `json:"classification"`
	Explanation           string         `json:"explanation"`
}

// AnalyzeResult is the response payload of the analyze endpoint.
type AnalyzeResult struct {
	PriceAnalysis   PriceAnalysis `json:"price_analysis"`
	InvestmentScore int           `json:"investment_score"`
	AreaInsights    string        `json:"area_insights"`
}
