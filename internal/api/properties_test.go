package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netita/server/internal/models"
)

const newProperty = `{
	"address": "12 Cherni Vrah Blvd",
	"location": "Lozenets",
	"price": 245000,
	"bedrooms": 2,
	"bathrooms": 1,
	"sqft": 850,
	"image": "assets/images/p1.png",
	"images": ["assets/images/p1.png", " "],
	"type": "Condo",
	"amenities": ["Parking"],
	"listingDate": "2026-01-10"
}`

func TestPropertyCRUD(t *testing.T) {
	router, _ := newTestRouter(t, &MockAnalyzer{})

	w := doRequest(router, http.MethodPost, "/api/properties", newProperty)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, []string{"assets/images/p1.png"}, created.Images)

	path := "/api/properties/" + jsonID(created.ID)

	w = doRequest(router, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"listingDate":"2026-01-10"`)

	w = doRequest(router, http.MethodPatch, path, `{"price": 239000, "description": "  Renovated  "}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 239000.0, updated.Price)
	assert.Equal(t, "Renovated", updated.Description)
	assert.Equal(t, "Lozenets", updated.Location)

	w = doRequest(router, http.MethodPatch, path, `{"images": null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"images":[]`)

	w = doRequest(router, http.MethodGet, "/api/properties", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	w = doRequest(router, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	var deleted models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.Equal(t, created.ID, deleted.ID)

	w = doRequest(router, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Error.Code)
}

func TestPropertyErrors(t *testing.T) {
	router, _ := newTestRouter(t, &MockAnalyzer{})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "non numeric id", method: http.MethodGet, path: "/api/properties/abc", wantStatus: http.StatusBadRequest, wantCode: "INVALID_ID"},
		{name: "unknown id", method: http.MethodGet, path: "/api/properties/999", wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "patch unknown id", method: http.MethodPatch, path: "/api/properties/999", body: `{"price": 1}`, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "delete non numeric id", method: http.MethodDelete, path: "/api/properties/1.5", wantStatus: http.StatusBadRequest, wantCode: "INVALID_ID"},
		{
			name:       "create with missing fields",
			method:     http.MethodPost,
			path:       "/api/properties",
			body:       `{"address": "  ", "location": "Center", "bedrooms": 1, "bathrooms": 1, "sqft": 500, "image": "a.png"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantMsg:    "address is required; price must be a number",
		},
		{
			name:       "create with wrong types",
			method:     http.MethodPost,
			path:       "/api/properties",
			body:       `{"price": "cheap"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Error.Message)
			}
		})
	}
}

func TestGetPropertyAnalytics(t *testing.T) {
	router, _ := newTestRouter(t, &MockAnalyzer{})

	w := doRequest(router, http.MethodGet, "/api/analytics/properties", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"avgPrice":null`)

	require.Equal(t, http.StatusCreated, doRequest(router, http.MethodPost, "/api/properties", newProperty).Code)

	w = doRequest(router, http.MethodGet, "/api/analytics/properties", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		GeneratedAt string               `json:"generatedAt"`
		Analytics   models.PropertyStats `json:"analytics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	_, err := time.Parse(time.RFC3339Nano, body.GeneratedAt)
	assert.NoError(t, err)
	assert.Equal(t, 1, body.Analytics.Count)
	require.NotNil(t, body.Analytics.MedianPrice)
	assert.Equal(t, 245000.0, *body.Analytics.MedianPrice)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
