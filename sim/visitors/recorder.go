package visitors

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/hector-sim/hector-core/sim"
	"github.com/hector-sim/hector-core/sim/simerr"
	"github.com/hector-sim/hector-core/sim/tseries"
)

// Target names one output as "component.variable".
type Target struct {
	Component string
	Variable  string
}

func (t Target) String() string { return t.Component + "." + t.Variable }

// ParseTarget parses "component.variable".
func ParseTarget(s string) (Target, error) {
	comp, v, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || comp == "" || v == "" {
		return Target{}, simerr.New(simerr.ConfigError, "output %q must have the form component.variable", s)
	}
	return Target{Component: comp, Variable: v}, nil
}

// Stats summarizes one recorded series.
type Stats struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	First  float64
	Last   float64
}

// Recorder records selected outputs at every visited date. It uses only the generic
// VisitComponent, so it works for every component kind. Dated variables are read at
// the visited date.
type Recorder struct {
	targets []Target
	series  map[Target]*tseries.Series[float64]
	date    float64
	checked bool
}

func NewRecorder(targets ...Target) *Recorder {
	r := &Recorder{targets: targets, series: make(map[Target]*tseries.Series[float64], len(targets))}
	for _, t := range targets {
		r.series[t] = tseries.NewFloat64()
	}
	return r
}

func (r *Recorder) ShouldVisit(float64) bool { return true }

// VisitCore checks on first use that every target names an existing component.
func (r *Recorder) VisitCore(c *sim.Core) error {
	r.date = c.CurrentDate()
	if r.checked {
		return nil
	}
	for _, t := range r.targets {
		if c.Component(t.Component) == nil {
			return simerr.New(simerr.ConfigError, "recorder: no component named %q", t.Component)
		}
	}
	r.checked = true
	return nil
}

func (r *Recorder) VisitComponent(c sim.Component) error {
	for _, t := range r.targets {
		if t.Component != c.Name() {
			continue
		}
		date := sim.UndefinedIndex()
		if isDated(c, t.Variable) {
			date = r.date
		}
		v, err := c.GetData(t.Variable, date)
		if err != nil {
			return simerr.Rethrow(err, "recording "+t.String())
		}
		r.series[t].Set(r.date, v.Value())
	}
	return nil
}

func isDated(c sim.Component, name string) bool {
	for _, vi := range c.Variables() {
		if vi.Name == name {
			return vi.Dated
		}
	}
	return false
}

// Series returns the recorded series for t, or nil if t is not recorded.
func (r *Recorder) Series(t Target) *tseries.Series[float64] { return r.series[t] }

// Summary computes statistics over everything recorded for t.
func (r *Recorder) Summary(t Target) (Stats, error) {
	s, ok := r.series[t]
	if !ok || s.Size() == 0 {
		return Stats{}, simerr.New(simerr.LookupError, "nothing recorded for %s", t)
	}
	values := s.Values()
	st := Stats{
		N:     len(values),
		Mean:  stat.Mean(values, nil),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
		First: values[0],
		Last:  values[len(values)-1],
	}
	if len(values) > 1 {
		st.StdDev = stat.StdDev(values, nil)
	}
	return st, nil
}

// Plot renders the recorded series for t as a terminal line chart.
func (r *Recorder) Plot(t Target, height, width int) (string, error) {
	s, ok := r.series[t]
	if !ok || s.Size() == 0 {
		return "", simerr.New(simerr.LookupError, "nothing recorded for %s", t)
	}
	caption := fmt.Sprintf("%s, dates %g to %g", t, s.FirstDate(), s.LastDate())
	return asciigraph.Plot(s.Values(),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}
