package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: Validation("INVALID_URL", "bad url"), expected: http.StatusBadRequest},
		{name: "extraction", err: Extraction("EXTRACTION_INCOMPLETE", "missing"), expected: http.StatusUnprocessableEntity},
		{name: "upstream", err: Upstream("UPSTREAM_BAD_STATUS", "503", nil), expected: http.StatusBadGateway},
		{name: "wrapped upstream", err: fmt.Errorf("analyze: %w", Upstream("UPSTREAM_NOT_HTML", "not html", nil)), expected: http.StatusBadGateway},
		{name: "unclassified", err: errors.New("boom"), expected: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Status(tt.err))
		})
	}
}

func TestCode(t *testing.T) {
	assert.Equal(t, "INVALID_URL", Code(Validation("INVALID_URL", "x"), "ANALYZE_FAILED"))
	assert.Equal(t, "ANALYZE_FAILED", Code(errors.New("boom"), "ANALYZE_FAILED"))
	assert.True(t, IsCode(fmt.Errorf("wrap: %w", Extraction("EXTRACTION_INCOMPLETE", "x")), "EXTRACTION_INCOMPLETE"))
	assert.False(t, IsCode(errors.New("boom"), "EXTRACTION_INCOMPLETE"))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("UPSTREAM_FETCH_FAILED", "Failed to fetch upstream URL", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to fetch upstream URL: connection refused", err.Error())
	assert.Equal(t, "upstream", err.Kind.String())
}
