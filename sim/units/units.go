// Package units provides a unit-tagged scalar. Arithmetic between values of different
// units fails with simerr.UnitMismatch instead of silently mixing quantities.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hector-sim/hector-core/sim/simerr"
)

// Unit identifies the physical unit of a Value.
type Unit int

const (
	Unitless Unit = iota
	PgC
	PgCPerYear
	PPMVCO2
	WPerM2
	DegC
	K
	Years
)

var unitNames = map[Unit]string{
	Unitless:   "(unitless)",
	PgC:        "PgC",
	PgCPerYear: "PgC/yr",
	PPMVCO2:    "ppmv CO2",
	WPerM2:     "W/m2",
	DegC:       "degC",
	K:          "K",
	Years:      "years",
}

// unitAliases maps accepted spellings (lowercased) to units.
var unitAliases = map[string]Unit{
	"":           Unitless,
	"(unitless)": Unitless,
	"unitless":   Unitless,
	"pgc":        PgC,
	"pgc/yr":     PgCPerYear,
	"ppmv":       PPMVCO2,
	"ppmv co2":   PPMVCO2,
	"w/m2":       WPerM2,
	"degc":       DegC,
	"k":          K,
	"years":      Years,
	"yr":         Years,
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// ParseUnit resolves a unit name, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return Unitless, simerr.New(simerr.InvalidValue, "unknown unit %q", s)
	}
	return u, nil
}

// Value is an immutable float64 tagged with a Unit. The zero Value is 0 (unitless).
type Value struct {
	val  float64
	unit Unit
}

func New(v float64, u Unit) Value { return Value{val: v, unit: u} }

// UnitlessValue returns v tagged as dimensionless.
func UnitlessValue(v float64) Value { return Value{val: v, unit: Unitless} }

func (v Value) Value() float64 { return v.val }

func (v Value) Unit() Unit { return v.unit }

// Set returns a new Value; the receiver is unchanged.
func (v Value) Set(val float64, u Unit) Value { return Value{val: val, unit: u} }

func (v Value) String() string {
	return strconv.FormatFloat(v.val, 'g', -1, 64) + " " + v.unit.String()
}

func (v Value) Add(o Value) (Value, error) {
	if err := v.sameUnit(o, "+"); err != nil {
		return Value{}, err
	}
	return Value{val: v.val + o.val, unit: v.unit}, nil
}

func (v Value) Sub(o Value) (Value, error) {
	if err := v.sameUnit(o, "-"); err != nil {
		return Value{}, err
	}
	return Value{val: v.val - o.val, unit: v.unit}, nil
}

func (v Value) Mul(s float64) Value { return Value{val: v.val * s, unit: v.unit} }

func (v Value) Div(s float64) (Value, error) {
	if s == 0 {
		return Value{}, simerr.New(simerr.InvalidValue, "division of %s by zero", v)
	}
	return Value{val: v.val / s, unit: v.unit}, nil
}

// Ratio divides two values of the same unit, yielding a plain number.
func (v Value) Ratio(o Value) (float64, error) {
	if err := v.sameUnit(o, "/"); err != nil {
		return 0, err
	}
	if o.val == 0 {
		return 0, simerr.New(simerr.InvalidValue, "division of %s by zero", v)
	}
	return v.val / o.val, nil
}

// Equal compares values of the same unit; comparing different units is an error.
func (v Value) Equal(o Value) (bool, error) {
	if err := v.sameUnit(o, "=="); err != nil {
		return false, err
	}
	return v.val == o.val, nil
}

// Lerp returns a*(1-w) + b*w. Both ends must share a unit.
func Lerp(a, b Value, w float64) (Value, error) {
	if err := a.sameUnit(b, "interpolate"); err != nil {
		return Value{}, err
	}
	return Value{val: a.val*(1-w) + b.val*w, unit: a.unit}, nil
}

// Parse reads "280" or "280 ppmv". A stated unit must equal expected.
func Parse(s string, expected Unit) (Value, error) {
	s = strings.TrimSpace(s)
	num, unitStr, _ := strings.Cut(s, " ")
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Value{}, simerr.RethrowAs(simerr.InvalidValue, err, fmt.Sprintf("bad numeric literal %q", num))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, simerr.New(simerr.InvalidValue, "non-finite value %q", num)
	}
	if strings.TrimSpace(unitStr) == "" {
		return New(f, expected), nil
	}
	u, err := ParseUnit(unitStr)
	if err != nil {
		return Value{}, err
	}
	if u != expected {
		return Value{}, simerr.New(simerr.UnitMismatch, "value %q has units %s, expected %s", s, u, expected)
	}
	return New(f, u), nil
}

func (v Value) sameUnit(o Value, op string) error {
	if v.unit != o.unit {
		return simerr.New(simerr.UnitMismatch, "units mismatch in %s: %s vs %s", op, v.unit, o.unit)
	}
	return nil
}
