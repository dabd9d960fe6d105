// Package sleeve implements the sleeve catalog and the compatibility rules
// that pair a catalog product with a user's diameter and length.
package sleeve

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Product is one catalog entry. Dimensions are in inches.
type Product struct {
	Model         string  `json:"Model"`
	Length        float64 `json:"Length"`
	Girth         float64 `json:"Girth"`
	GirthCategory string  `json:"Girth Category"`
	URL           string  `json:"URL,omitempty"`
}

// Validate rejects products that cannot be sized.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Model) == "" {
		return errors.New("model is required")
	}
	if p.Length <= 0 {
		return fmt.Errorf("%s: length must be > 0", p.Model)
	}
	if p.Girth <= 0 {
		return fmt.Errorf("%s: girth must be > 0", p.Model)
	}
	return nil
}

// Diameter is the external diameter derived from the girth.
func (p Product) Diameter() float64 {
	return roundTo(p.Girth/math.Pi, 3)
}

// MaxInternalLength is the usable interior length. Girth models lose half an
// inch to the closed end, the rest lose a full inch.
func (p Product) MaxInternalLength() float64 {
	if strings.Contains(strings.ToLower(p.Model), "girth") {
		return p.Length - 0.5
	}
	return p.Length - 1
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// GirthWhenWorn estimates the circumference of the sleeve when worn with an
// opening of recommended diameter, assuming 10% compression.
func GirthWhenWorn(userDiameter, recommended, sleeveDiameter float64) float64 {
	thickness := sleeveDiameter - recommended
	total := thickness + userDiameter
	squished := total * 0.9
	if squished >= sleeveDiameter {
		return roundTo(squished*math.Pi, 2)
	}
	return roundTo(sleeveDiameter*math.Pi, 2)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
