package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"netita/server/config"
	"netita/server/internal/analyzer"
	"netita/server/internal/fetcher"
	"netita/server/internal/imoti"
	"netita/server/internal/metrics"
)

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	switch strings.ToLower(cfg.Log.Format) {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)
	return logger, nil
}

// newAnalyzer wires the listing pipeline: URL validation, fetching, metrics and scoring.
func newAnalyzer(cfg *config.Config, logger *logrus.Logger) *analyzer.Service {
	hosts := imoti.NewHostPolicy(cfg.Analyze.AllowedDomain)
	pages := fetcher.NewFetcher(logger, hosts, fetcher.Options{
		Timeout:      cfg.Analyze.FetchTimeout,
		MaxBytes:     cfg.Analyze.MaxHTMLBytes,
		MaxRedirects: cfg.Analyze.MaxRedirects,
	})
	store := metrics.NewStore(logger, cfg.Analyze.MetricsPath)
	return analyzer.NewService(logger, imoti.NewValidator(hosts), pages, store, cfg.Analyze.BGNPerEUR)
}
