package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"netita/server/internal/apperr"
	"netita/server/internal/database"
	"netita/server/internal/models"
)

// ListingAnalyzer runs the analyze pipeline for one URL.
type ListingAnalyzer interface {
	Analyze(ctx context.Context, rawURL string) (*models.AnalyzeResult, error)
}

type Handler struct {
	db       *database.Database
	analyzer ListingAnalyzer
	logger   *logrus.Logger
}

type AnalyzeRequest struct {
	URL string `json:"url"`
}

func NewHandler(db *database.Database, analyzer ListingAnalyzer, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Handler{db: db, analyzer: analyzer, logger: logger}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{"code": code, "message": message},
	})
}

// bindJSON decodes the body into dst and reports a 400 or 413 on failure. An empty body
// leaves dst untouched when allowEmpty is set.
func bindJSON(c *gin.Context, dst any, allowEmpty bool) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body is too large")
		return false
	}
	writeError(c, http.StatusBadRequest, "INVALID_INPUT", "Request body must be valid JSON")
	return false
}

// AnalyzeListing scores the listing behind the posted URL.
func (h *Handler) AnalyzeListing(c *gin.Context) {
	var req AnalyzeRequest
	if !bindJSON(c, &req, true) {
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), req.URL)
	if err != nil {
		if e, ok := apperr.As(err); ok {
			writeError(c, e.Status(), e.Code, e.Message)
			return
		}
		h.logger.WithError(err).Error("Failed to analyze listing")
		writeError(c, http.StatusBadRequest, "ANALYZE_FAILED", "Failed to analyze URL")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetPropertyAnalytics(c *gin.Context) {
	stats, err := h.db.GetPropertyStats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute property analytics")
		writeError(c, http.StatusInternalServerError, "ANALYTICS_FAILED", "Failed to compute analytics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generatedAt": time.Now().UTC().Format(time.RFC3339Nano),
		"analytics":   stats,
	})
}

// NotFound answers unknown routes with the JSON error envelope.
func (h *Handler) NotFound(c *gin.Context) {
	writeError(c, http.StatusNotFound, "NOT_FOUND", "API route not found")
}
