package sizing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMissingMeasurement is matched by MissingMeasurementError.
	ErrMissingMeasurement = errors.New("missing measurement")
	// ErrInvalidMeasurement is matched by InvalidMeasurementError.
	ErrInvalidMeasurement = errors.New("invalid measurement")
	// ErrUnsupportedUnit is matched by UnitError.
	ErrUnsupportedUnit = errors.New("unsupported unit")
	// ErrOutOfRange is matched by OutOfRangeError.
	ErrOutOfRange = errors.New("no matching size")
)

// MissingMeasurementError names the required dimension that was absent.
type MissingMeasurementError struct {
	Dimension string
}

func (e *MissingMeasurementError) Error() string {
	return fmt.Sprintf("missing measurement %q", e.Dimension)
}

func (e *MissingMeasurementError) Is(target error) bool {
	return target == ErrMissingMeasurement
}

// InvalidMeasurementError rejects a supplied value before matching.
type InvalidMeasurementError struct {
	Dimension string
	Value     float64
	Reason    string
}

func (e *InvalidMeasurementError) Error() string {
	return fmt.Sprintf("invalid measurement %q=%g: %s", e.Dimension, e.Value, e.Reason)
}

func (e *InvalidMeasurementError) Is(target error) bool {
	return target == ErrInvalidMeasurement
}

// OutOfRangeError is returned when the nearest entry lies beyond the table tolerance.
type OutOfRangeError struct {
	Table        string
	Measurements map[string]float64
	Distance     float64
	Tolerance    float64
}

func (e *OutOfRangeError) Error() string {
	keys := make([]string, 0, len(e.Measurements))
	for k := range e.Measurements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, e.Measurements[k]))
	}
	return fmt.Sprintf("no size in %q within tolerance %g for %s (nearest distance %g)",
		e.Table, e.Tolerance, strings.Join(parts, ", "), e.Distance)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
