// Package sizing resolves body measurements to a size label against a static reference table.
package sizing

import "fmt"

// Fit describes how well a resolved entry matches the supplied measurements.
type Fit string

const (
	FitExact     Fit = "exact"
	FitAmbiguous Fit = "ambiguous"
	FitNearest   Fit = "nearest"
)

// Range is a numeric interval, inclusive on both ends unless ExclusiveMax
// makes the upper bound open.
type Range struct {
	Min          float64 `json:"min" yaml:"min"`
	Max          float64 `json:"max" yaml:"max"`
	ExclusiveMax bool    `json:"exclusive_max,omitempty" yaml:"exclusive_max,omitempty"`
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	if r.ExclusiveMax {
		return v >= r.Min && v < r.Max
	}
	return v >= r.Min && v <= r.Max
}

// Distance returns how far v lies outside the range; zero when inside or on
// an open upper bound.
func (r Range) Distance(v float64) float64 {
	switch {
	case v < r.Min:
		return r.Min - v
	case v > r.Max:
		return v - r.Max
	default:
		return 0
	}
}

// Overlaps reports whether two ranges share at least one value.
func (r Range) Overlaps(other Range) bool {
	return below(r.Min, other) && below(other.Min, r)
}

// below reports whether v does not lie above the upper bound of r.
func below(v float64, r Range) bool {
	if r.ExclusiveMax {
		return v < r.Max
	}
	return v <= r.Max
}

func (r Range) String() string {
	if r.ExclusiveMax {
		return fmt.Sprintf("%g-<%g", r.Min, r.Max)
	}
	return fmt.Sprintf("%g-%g", r.Min, r.Max)
}

// Dimension is one measured body quantity a table requires.
type Dimension struct {
	Name string  `json:"name"`
	Max  float64 `json:"max"`
}

// Entry maps a size label to a range per dimension.
type Entry struct {
	Label  string           `json:"label"`
	Ranges map[string]Range `json:"ranges"`
}

// Table is an immutable reference table. Entries keep document order.
type Table struct {
	Name       string      `json:"name"`
	Unit       Unit        `json:"unit"`
	Tolerance  float64     `json:"tolerance"`
	Precision  int         `json:"precision"`
	Dimensions []Dimension `json:"dimensions"`
	Entries    []Entry     `json:"entries"`
}

// Dimension looks up a dimension by name.
func (t *Table) Dimension(name string) (Dimension, bool) {
	for _, dim := range t.Dimensions {
		if dim.Name == name {
			return dim, true
		}
	}
	return Dimension{}, false
}

// Result is the outcome of a successful resolution.
type Result struct {
	Table    string  `json:"table"`
	Label    string  `json:"label"`
	Fit      Fit     `json:"fit"`
	Distance float64 `json:"distance"`
}
