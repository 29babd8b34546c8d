package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Property is a catalog entry managed through the admin API.
type Property struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Address     string    `json:"address"`
	Location    string    `json:"location" gorm:"index"`
	Price       float64   `json:"price"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   float64   `json:"bathrooms"`
	Sqft        float64   `json:"sqft"`
	Image       string    `json:"image"`
	Images      []string  `json:"images" gorm:"serializer:json"`
	YearBuilt   *int      `json:"yearBuilt"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Amenities   []string  `json:"amenities" gorm:"serializer:json"`
	ListingDate string    `json:"listingDate"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// PropertyInput is the create payload. Pointer fields distinguish "missing" from zero.
type PropertyInput struct {
	Address     string   `json:"address"`
	Location    string   `json:"location"`
	Price       *float64 `json:"price"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *float64 `json:"bathrooms"`
	Sqft        *float64 `json:"sqft"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
	YearBuilt   *int     `json:"yearBuilt"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Amenities   []string `json:"amenities"`
	ListingDate string   `json:"listingDate"`
}

// PropertyPatch carries only the fields present in a PATCH body.
type PropertyPatch struct {
	Address     *string   `json:"address"`
	Location    *string   `json:"location"`
	Price       *float64  `json:"price"`
	Bedrooms    *int      `json:"bedrooms"`
	Bathrooms   *float64  `json:"bathrooms"`
	Sqft        *float64  `json:"sqft"`
	Image       *string   `json:"image"`
	Images      PatchList `json:"images"`
	YearBuilt   *int      `json:"yearBuilt"`
	Type        *string   `json:"type"`
	Description *string   `json:"description"`
	Amenities   PatchList `json:"amenities"`
	ListingDate *string   `json:"listingDate"`
}

// PatchList is a list field of a PATCH body. Present is set whenever the key appears,
// and an explicit null clears the list.
type PatchList struct {
	Present bool
	Values  []string
}

// SetList returns a present PatchList holding values.
func SetList(values ...string) PatchList {
	return PatchList{Present: true, Values: values}
}

func (l *PatchList) UnmarshalJSON(data []byte) error {
	l.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		l.Values = nil
		return nil
	}
	return json.Unmarshal(data, &l.Values)
}

// PropertyStats summarizes the catalog. Nil fields mean there was nothing to aggregate.
type PropertyStats struct {
	Count           int      `json:"count"`
	AvgPrice        *float64 `json:"avgPrice"`
	MedianPrice     *float64 `json:"medianPrice"`
	AvgSqft         *float64 `json:"avgSqft"`
	AvgPricePerSqft *float64 `json:"avgPricePerSqft"`
}
