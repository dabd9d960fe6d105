package sizing

import (
	"math"
	"sort"
)

// distanceEpsilon absorbs float error when summing per-dimension distances.
const distanceEpsilon = 1e-9

// Resolver matches measurements against one table. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	table Table
}

// NewResolver constructs a Resolver over an already validated table.
func NewResolver(table Table) *Resolver {
	return &Resolver{table: table}
}

// Table returns the reference table backing the resolver.
func (r *Resolver) Table() Table {
	return r.table
}

// Resolve matches measurements expressed in the table unit.
func (r *Resolver) Resolve(measurements map[string]float64) (Result, error) {
	return r.ResolveIn(r.table.Unit, measurements)
}

// ResolveIn matches measurements expressed in unit. An empty unit means the table unit.
func (r *Resolver) ResolveIn(unit Unit, measurements map[string]float64) (Result, error) {
	if unit != "" && !unit.Valid() {
		return Result{}, &UnitError{Unit: unit}
	}
	values, err := r.normalize(unit, measurements)
	if err != nil {
		return Result{}, err
	}

	matched := -1
	matches := 0
	for i, entry := range r.table.Entries {
		if r.contains(entry, values) {
			if matched < 0 {
				matched = i
			}
			matches++
		}
	}

	switch {
	case matches == 1:
		return r.result(matched, FitExact, 0), nil
	case matches > 1:
		return r.result(matched, FitAmbiguous, 0), nil
	}

	nearest := -1
	best := math.Inf(1)
	for i, entry := range r.table.Entries {
		if d := r.distance(entry, values); d < best {
			best = d
			nearest = i
		}
	}
	best = round(best, r.table.Precision)
	if nearest < 0 || !r.withinTolerance(best) {
		return Result{}, &OutOfRangeError{
			Table:        r.table.Name,
			Measurements: values,
			Distance:     best,
			Tolerance:    r.table.Tolerance,
		}
	}
	return r.result(nearest, FitNearest, best), nil
}

// normalize validates the input and converts it to rounded table-unit values.
func (r *Resolver) normalize(unit Unit, measurements map[string]float64) (map[string]float64, error) {
	for _, dim := range r.table.Dimensions {
		if _, ok := measurements[dim.Name]; !ok {
			return nil, &MissingMeasurementError{Dimension: dim.Name}
		}
	}

	names := make([]string, 0, len(measurements))
	for name := range measurements {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(map[string]float64, len(measurements))
	for _, name := range names {
		raw := measurements[name]
		dim, ok := r.table.Dimension(name)
		if !ok {
			return nil, &InvalidMeasurementError{Dimension: name, Value: raw, Reason: "unknown dimension"}
		}
		if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
			return nil, &InvalidMeasurementError{Dimension: name, Value: raw, Reason: "must be a positive number"}
		}
		v := round(Convert(raw, unit, r.table.Unit), r.table.Precision)
		if dim.Max > 0 && v > dim.Max {
			return nil, &InvalidMeasurementError{Dimension: name, Value: raw, Reason: "exceeds plausible maximum"}
		}
		values[name] = v
	}
	return values, nil
}

func (r *Resolver) contains(entry Entry, values map[string]float64) bool {
	for _, dim := range r.table.Dimensions {
		rng, ok := entry.Ranges[dim.Name]
		if !ok || !rng.Contains(values[dim.Name]) {
			return false
		}
	}
	return true
}

func (r *Resolver) distance(entry Entry, values map[string]float64) float64 {
	total := 0.0
	for _, dim := range r.table.Dimensions {
		rng, ok := entry.Ranges[dim.Name]
		if !ok {
			return math.Inf(1)
		}
		total += rng.Distance(values[dim.Name])
	}
	return total
}

// withinTolerance reports whether a nearest entry at distance may be returned.
// A zero tolerance admits exact matches only.
func (r *Resolver) withinTolerance(distance float64) bool {
	if r.table.Tolerance == 0 {
		return false
	}
	return distance <= r.table.Tolerance+distanceEpsilon
}

func (r *Resolver) result(idx int, fit Fit, distance float64) Result {
	return Result{
		Table:    r.table.Name,
		Label:    r.table.Entries[idx].Label,
		Fit:      fit,
		Distance: distance,
	}
}

func round(v float64, precision int) float64 {
	if precision <= 0 {
		return v
	}
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}
