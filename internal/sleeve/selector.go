package sleeve

import (
	"errors"
	"fmt"
	"strconv"

	"example.com/sleeveselector/internal/sizing"
)

const (
	// SoftOpeningTable serves the low and medium girth categories.
	SoftOpeningTable = "opening-soft"
	// FirmOpeningTable serves every other category.
	FirmOpeningTable = "opening-firm"

	diameterDimension = "diameter"
	notApplicable     = "N/A"
)

// ErrInvalidQuery is returned for queries that cannot be evaluated.
var ErrInvalidQuery = errors.New("invalid compatibility query")

// Resolvers looks up reference table resolvers by name.
type Resolvers interface {
	Resolver(name string) (*sizing.Resolver, error)
}

// Query carries the user's dimensions and optional catalog filters. Nil
// windows default to the catalog bounds.
type Query struct {
	Diameter  float64
	Length    float64
	MinGirth  *float64
	MaxGirth  *float64
	MinLength *float64
	MaxLength *float64
}

// Match is a compatible product with its fitting details.
type Match struct {
	Product
	SleeveDiameter                float64 `json:"Diameter"`
	InternalLength                float64 `json:"Max Internal Length"`
	RecommendedDiameter           float64 `json:"Recommended Diameter"`
	RecommendedInternalDimensions string  `json:"Recommended Internal Dimensions"`
	GirthWhenWorn                 float64 `json:"Girth When Worn"`
}

// Selector pairs a catalog with the opening recommendation tables.
type Selector struct {
	catalog *Catalog
	soft    *sizing.Resolver
	firm    *sizing.Resolver
}

// NewSelector wires a Selector. Both opening tables must exist.
func NewSelector(catalog *Catalog, resolvers Resolvers) (*Selector, error) {
	soft, err := resolvers.Resolver(SoftOpeningTable)
	if err != nil {
		return nil, fmt.Errorf("sleeve selector: %w", err)
	}
	firm, err := resolvers.Resolver(FirmOpeningTable)
	if err != nil {
		return nil, fmt.Errorf("sleeve selector: %w", err)
	}
	return &Selector{catalog: catalog, soft: soft, firm: firm}, nil
}

// RecommendOpening returns the recommended internal opening diameter for a
// user diameter and a product category. ok is false when no opening fits.
func (s *Selector) RecommendOpening(userDiameter float64, category string) (float64, bool) {
	resolver := s.firm
	switch normalizeCategory(category) {
	case "low", "medium":
		resolver = s.soft
	}

	res, err := resolver.ResolveIn(sizing.UnitInch, map[string]float64{diameterDimension: userDiameter})
	if err != nil || res.Label == notApplicable {
		return 0, false
	}
	value, err := strconv.ParseFloat(res.Label, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Compatible returns the catalog products that fit the query, in catalog order.
func (s *Selector) Compatible(q Query) ([]Match, error) {
	if q.Diameter <= 0 || q.Length <= 0 {
		return nil, fmt.Errorf("%w: diameter and length must be > 0", ErrInvalidQuery)
	}

	bounds := s.catalog.Bounds()
	minGirth := valueOr(q.MinGirth, bounds.MinGirth)
	maxGirth := valueOr(q.MaxGirth, bounds.MaxGirth)
	minLength := valueOr(q.MinLength, bounds.MinLength)
	maxLength := valueOr(q.MaxLength, bounds.MaxLength)
	if minGirth > maxGirth || minLength > maxLength {
		return nil, fmt.Errorf("%w: filter minimum exceeds maximum", ErrInvalidQuery)
	}

	matches := make([]Match, 0)
	for _, p := range s.catalog.products {
		diameter := p.Diameter()
		maxInternal := p.MaxInternalLength()
		if maxInternal < q.Length || q.Diameter >= diameter {
			continue
		}
		if p.Girth < minGirth || p.Girth > maxGirth || p.Length < minLength || p.Length > maxLength {
			continue
		}
		recommended, ok := s.RecommendOpening(q.Diameter, p.GirthCategory)
		if !ok {
			continue
		}
		matches = append(matches, Match{
			Product:                       p,
			SleeveDiameter:                diameter,
			InternalLength:                maxInternal,
			RecommendedDiameter:           recommended,
			RecommendedInternalDimensions: formatNumber(q.Length) + " x " + formatNumber(recommended),
			GirthWhenWorn:                 GirthWhenWorn(q.Diameter, recommended, diameter),
		})
	}
	return matches, nil
}

// Options lists the values a form offers for diameter and length selection.
type Options struct {
	Diameters []float64 `json:"diameters"`
	Lengths   []float64 `json:"lengths"`
	Bounds    Bounds    `json:"bounds"`
}

// Options returns the select options alongside the catalog bounds.
func (s *Selector) Options() Options {
	return Options{
		Diameters: steps(1, 3.125, 0.125, 3),
		Lengths:   steps(3, 9.25, 0.25, 2),
		Bounds:    s.catalog.Bounds(),
	}
}

// steps yields start, start+step, ... strictly below stop.
func steps(start, stop, step float64, places int) []float64 {
	out := make([]float64, 0)
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v >= stop {
			break
		}
		out = append(out, roundTo(v, places))
	}
	return out
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
