package sizing

import (
	"fmt"
	"strings"
)

// Unit is a length unit measurements may be expressed in.
type Unit string

const (
	UnitCentimeter Unit = "cm"
	UnitMillimeter Unit = "mm"
	UnitInch       Unit = "in"
)

var centimetersPer = map[Unit]float64{
	UnitCentimeter: 1,
	UnitMillimeter: 0.1,
	UnitInch:       2.54,
}

// ParseUnit normalises a unit name. An empty string yields the empty unit.
func ParseUnit(raw string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", nil
	case "cm", "centimeter", "centimeters":
		return UnitCentimeter, nil
	case "mm", "millimeter", "millimeters":
		return UnitMillimeter, nil
	case "in", "inch", "inches":
		return UnitInch, nil
	}
	return "", fmt.Errorf("unknown unit %q", raw)
}

// UnitError rejects a unit no table can convert from.
type UnitError struct {
	Unit Unit
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("unsupported unit %q", string(e.Unit))
}

func (e *UnitError) Is(target error) bool {
	return target == ErrUnsupportedUnit
}

// Valid reports whether u is a supported unit.
func (u Unit) Valid() bool {
	_, ok := centimetersPer[u]
	return ok
}

// Convert expresses v, given in unit from, in unit to.
func Convert(v float64, from, to Unit) float64 {
	if from == to || from == "" || to == "" {
		return v
	}
	return v * centimetersPer[from] / centimetersPer[to]
}
