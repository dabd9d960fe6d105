package api

import (
	"errors"

	"example.com/sleeveselector/internal/sizing"
	"example.com/sleeveselector/internal/sleeve"
)

// ResolveRequest is the payload for POST /v1/sizes/{table}/resolve.
type ResolveRequest struct {
	Unit         string             `json:"unit"`
	Measurements map[string]float64 `json:"measurements"`
}

// Validate checks the payload shape and returns the parsed unit. Range and
// presence checks per dimension belong to the resolver.
func (r ResolveRequest) Validate() (sizing.Unit, error) {
	if len(r.Measurements) == 0 {
		return "", errors.New("measurements are required")
	}
	return sizing.ParseUnit(r.Unit)
}

// ErrorResponse is the error body shared by every endpoint.
type ErrorResponse struct {
	Type      string `json:"type"`
	Detail    string `json:"detail"`
	Dimension string `json:"dimension,omitempty"`
}

// TableSummary describes a reference table without its entries.
type TableSummary struct {
	Name       string             `json:"name"`
	Unit       sizing.Unit        `json:"unit"`
	Tolerance  float64            `json:"tolerance"`
	Precision  int                `json:"precision"`
	Dimensions []sizing.Dimension `json:"dimensions"`
	Labels     []string           `json:"labels"`
}

// SleeveView is a compatible sleeve as shown to the form. Detailed
// measurements are only populated on request.
type SleeveView struct {
	Model                         string   `json:"model"`
	URL                           string   `json:"url,omitempty"`
	Length                        float64  `json:"length"`
	Girth                         float64  `json:"girth"`
	GirthCategory                 string   `json:"girth_category"`
	RecommendedInternalDimensions string   `json:"recommended_internal_dimensions"`
	GirthWhenWorn                 float64  `json:"girth_when_worn"`
	Diameter                      *float64 `json:"diameter,omitempty"`
	MaxInternalLength             *float64 `json:"max_internal_length,omitempty"`
}

// CompatibleResponse packages compatibility results.
type CompatibleResponse struct {
	Count   int          `json:"count"`
	Items   []SleeveView `json:"items"`
	Message string       `json:"message,omitempty"`
}

func toTableSummary(t sizing.Table) TableSummary {
	labels := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		labels = append(labels, e.Label)
	}
	return TableSummary{
		Name:       t.Name,
		Unit:       t.Unit,
		Tolerance:  t.Tolerance,
		Precision:  t.Precision,
		Dimensions: t.Dimensions,
		Labels:     labels,
	}
}

func toSleeveView(m sleeve.Match, detailed bool) SleeveView {
	view := SleeveView{
		Model:                         m.Model,
		URL:                           m.URL,
		Length:                        m.Length,
		Girth:                         m.Girth,
		GirthCategory:                 m.GirthCategory,
		RecommendedInternalDimensions: m.RecommendedInternalDimensions,
		GirthWhenWorn:                 m.GirthWhenWorn,
	}
	if detailed {
		diameter, internal := m.SleeveDiameter, m.InternalLength
		view.Diameter = &diameter
		view.MaxInternalLength = &internal
	}
	return view
}
