package analyzer

import (
	"context"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"netita/server/internal/apperr"
	"netita/server/internal/imoti"
	"netita/server/internal/models"
	"netita/server/internal/valuation"
)

// DefaultBGNPerEUR is the fixed lev/euro peg.
const DefaultBGNPerEUR = 1.95583

// PageFetcher downloads a listing page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// MetricsLookup resolves a district name to its benchmark record.
type MetricsLookup interface {
	Lookup(district string) (models.DistrictMetrics, error)
}

// Service runs the analyze pipeline for a single listing URL.
type Service struct {
	logger    *logrus.Logger
	validator *imoti.Validator
	fetcher   PageFetcher
	metrics   MetricsLookup
	bgnPerEUR decimal.Decimal
}

func NewService(logger *logrus.Logger, validator *imoti.Validator, fetcher PageFetcher, metrics MetricsLookup, bgnPerEUR float64) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if bgnPerEUR <= 0 {
		bgnPerEUR = DefaultBGNPerEUR
	}
	return &Service{
		logger:    logger,
		validator: validator,
		fetcher:   fetcher,
		metrics:   metrics,
		bgnPerEUR: decimal.NewFromFloat(bgnPerEUR),
	}
}

// Analyze validates rawURL, fetches and parses the listing and scores it against its
// district. The first failing stage ends the request.
func (s *Service) Analyze(ctx context.Context, rawURL string) (*models.AnalyzeResult, error) {
	start := time.Now()

	listingURL, err := s.validator.Validate(rawURL)
	if err != nil {
		return nil, s.fail("validate", err)
	}
	log := s.logger.WithField("url", listingURL)

	log.Debug("Fetching listing")
	html, err := s.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return nil, s.fail("fetch", err)
	}

	log.WithField("bytes", len(html)).Debug("Extracting listing fields")
	listing, err := imoti.Extract(html, listingURL)
	if err != nil {
		return nil, s.fail("extract", err)
	}

	price := NormalizePriceToEUR(listing.Price, listing.PriceCurrency, s.bgnPerEUR)

	metrics, err := s.metrics.Lookup(listing.District)
	if err != nil {
		return nil, s.fail("metrics", err)
	}

	analysis := valuation.AnalyzePrice(price, listing.AreaM2, listing.District, metrics)
	result := &models.AnalyzeResult{
		PriceAnalysis:   analysis,
		InvestmentScore: valuation.Score(price, listing.AreaM2, metrics, listing.PropertyType, analysis),
		AreaInsights:    valuation.AreaInsights(listing.District, metrics),
	}

	log.WithFields(logrus.Fields{
		"district":       listing.District,
		"classification": analysis.Classification,
		"score":          result.InvestmentScore,
		"duration":       time.Since(start),
	}).Info("Analyzed listing")

	return result, nil
}

func (s *Service) fail(stage string, err error) error {
	s.logger.WithFields(logrus.Fields{
		"stage": stage,
		"code":  apperr.Code(err, ""),
	}).WithError(err).Warn("Analyze failed")
	return err
}

// NormalizePriceToEUR converts a BGN price with the fixed peg. EUR and unknown
// currencies pass through. The result is rounded to whole euros.
func NormalizePriceToEUR(price float64, currency *models.Currency, bgnPerEUR decimal.Decimal) float64 {
	amount := decimal.NewFromFloat(price)
	if currency != nil && *currency == models.CurrencyBGN && bgnPerEUR.IsPositive() {
		amount = amount.Div(bgnPerEUR)
	}
	return amount.Round(0).InexactFloat64()
}
