package metrics

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sirupsen/logrus"

	"netita/server/internal/apperr"
	"netita/server/internal/models"
)

const CodeDistrictMissing = "DISTRICT_MISSING"

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "district_metrics.schema.json"

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func tableSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("failed to add metrics schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// Store serves district benchmarks from a JSON file. The file is read on first use and
// kept in memory; a failed read is not cached, so the next call tries again.
type Store struct {
	logger *logrus.Logger
	path   string

	mu    sync.RWMutex
	table *models.MetricsTable
}

func NewStore(logger *logrus.Logger, path string) *Store {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Store{logger: logger, path: path}
}

// Load returns the cached table, reading and validating the file on first use.
func (s *Store) Load() (*models.MetricsTable, error) {
	s.mu.RLock()
	table := s.table
	s.mu.RUnlock()
	if table != nil {
		return table, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table != nil {
		return s.table, nil
	}

	table, err := readTable(s.path)
	if err != nil {
		s.logger.WithError(err).WithField("path", s.path).Error("Failed to load district metrics")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"path":      s.path,
		"districts": len(table.Districts),
	}).Info("Loaded district metrics")

	s.table = table
	return table, nil
}

func readTable(path string) (*models.MetricsTable, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read district metrics: %w", err)
	}

	schema, err := tableSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse district metrics: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid district metrics: %w", err)
	}

	var table models.MetricsTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse district metrics: %w", err)
	}
	return &table, nil
}

// Lookup finds the benchmark for a district: exact name first, then a substring match in
// either direction, then the default record renamed to the query.
func (s *Store) Lookup(name string) (models.DistrictMetrics, error) {
	table, err := s.Load()
	if err != nil {
		return models.DistrictMetrics{}, err
	}

	district := strings.TrimSpace(name)
	if district == "" {
		return models.DistrictMetrics{}, apperr.Validation(CodeDistrictMissing, "District is required for metrics lookup")
	}

	return match(table, district), nil
}

func match(table *models.MetricsTable, district string) models.DistrictMetrics {
	query := normalizeKey(district)

	for _, d := range table.Districts {
		if normalizeKey(d.Name) == query {
			return d
		}
	}

	for _, d := range table.Districts {
		ref := normalizeKey(d.Name)
		if ref == "" {
			continue
		}
		if strings.Contains(query, ref) || strings.Contains(ref, query) {
			return d
		}
	}

	fallback := table.Default
	fallback.Name = district
	return fallback
}

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
