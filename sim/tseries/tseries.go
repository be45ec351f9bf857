// Package tseries provides a sparse, date-keyed series with optional linear
// interpolation between recorded dates.
package tseries

import (
	"fmt"
	"math"
	"sort"

	"github.com/hector-sim/hector-core/sim/simerr"
	"github.com/hector-sim/hector-core/sim/units"
)

// Lerp blends a and b with weight w in (0, 1): a*(1-w) + b*w.
type Lerp[T any] func(a, b T, w float64) (T, error)

// Series maps dates to values. Dates are kept sorted so lookups are binary searches.
// Points are never removed.
//
// Thread-safety: NOT thread-safe.
type Series[T any] struct {
	dates  []float64
	values []T
	interp bool
	lerp   Lerp[T]
}

// New returns an empty series using lerp for interpolation. Interpolation starts disabled.
func New[T any](lerp Lerp[T]) *Series[T] {
	return &Series[T]{lerp: lerp}
}

// NewFloat64 returns an empty float64 series.
func NewFloat64() *Series[float64] {
	return New[float64](func(a, b float64, w float64) (float64, error) {
		return a*(1-w) + b*w, nil
	})
}

// NewUnitval returns an empty series of unit-tagged values. Interpolating between
// points of different units fails with UnitMismatch.
func NewUnitval() *Series[units.Value] {
	return New[units.Value](units.Lerp)
}

// SetInterpolatable toggles interpolation for subsequent Get calls.
func (s *Series[T]) SetInterpolatable(on bool) { s.interp = on }

func (s *Series[T]) Interpolatable() bool { return s.interp }

// Set inserts or overwrites the value at date. Panics on a NaN or infinite date, which
// would break the ordering every lookup relies on; callers validate dates first.
func (s *Series[T]) Set(date float64, v T) {
	if math.IsNaN(date) || math.IsInf(date, 0) {
		panic(fmt.Sprintf("tseries: invalid date %g", date))
	}
	i := sort.SearchFloat64s(s.dates, date)
	if i < len(s.dates) && s.dates[i] == date {
		s.values[i] = v
		return
	}
	s.dates = append(s.dates, 0)
	copy(s.dates[i+1:], s.dates[i:])
	s.dates[i] = date

	var zero T
	s.values = append(s.values, zero)
	copy(s.values[i+1:], s.values[i:])
	s.values[i] = v
}

// Get returns the value at date: an exact match, or, when interpolation is enabled,
// the linear blend of the two bracketing points. Dates outside the recorded range and
// unrecorded dates with interpolation disabled fail with LookupError.
func (s *Series[T]) Get(date float64) (T, error) {
	var zero T
	n := len(s.dates)
	if n == 0 {
		return zero, simerr.New(simerr.LookupError, "date %g requested from an empty series", date)
	}
	i := sort.SearchFloat64s(s.dates, date)
	if i < n && s.dates[i] == date {
		return s.values[i], nil
	}
	if i == 0 || i == n {
		return zero, simerr.New(simerr.LookupError, "date %g outside series range [%g, %g]", date, s.dates[0], s.dates[n-1])
	}
	if !s.interp {
		return zero, simerr.New(simerr.LookupError, "date %g not found and interpolation is disabled", date)
	}
	lo, hi := s.dates[i-1], s.dates[i]
	v, err := s.lerp(s.values[i-1], s.values[i], (date-lo)/(hi-lo))
	if err != nil {
		return zero, simerr.Rethrow(err, "interpolating series")
	}
	return v, nil
}

// Size returns the number of stored points.
func (s *Series[T]) Size() int { return len(s.dates) }

// Exists reports whether a point is recorded exactly at date.
func (s *Series[T]) Exists(date float64) bool {
	i := sort.SearchFloat64s(s.dates, date)
	return i < len(s.dates) && s.dates[i] == date
}

// FirstDate returns the earliest recorded date. Panics on an empty series.
func (s *Series[T]) FirstDate() float64 {
	if len(s.dates) == 0 {
		panic("tseries: FirstDate on empty series")
	}
	return s.dates[0]
}

// LastDate returns the latest recorded date. Panics on an empty series.
func (s *Series[T]) LastDate() float64 {
	if len(s.dates) == 0 {
		panic("tseries: LastDate on empty series")
	}
	return s.dates[len(s.dates)-1]
}

// Dates returns a copy of the recorded dates in ascending order.
func (s *Series[T]) Dates() []float64 {
	out := make([]float64, len(s.dates))
	copy(out, s.dates)
	return out
}

// Values returns a copy of the recorded values in date order.
func (s *Series[T]) Values() []T {
	out := make([]T, len(s.values))
	copy(out, s.values)
	return out
}
