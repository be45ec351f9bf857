package components

import (
	"math"
	"sort"
	"strings"

	"github.com/hector-sim/hector-core/sim"
	"github.com/hector-sim/hector-core/sim/logging"
	"github.com/hector-sim/hector-core/sim/simerr"
	"github.com/hector-sim/hector-core/sim/tseries"
	"github.com/hector-sim/hector-core/sim/units"
)

const TableKind = "table"

// TableVisitor is implemented by visitors with dedicated handling for Table.
type TableVisitor interface {
	VisitTable(t *Table) error
}

// Table serves prescribed input series, such as emissions or forcing, to other
// components. Every variable is dated and interpolating, and takes its units from the
// first value set. Each variable becomes a capability the first time it is set.
type Table struct {
	sim.Lifecycle
	name string
	core sim.CoreHandle
	log  *logging.Channel

	series map[string]*tseries.Series[units.Value]
	units  map[string]units.Unit

	current float64
}

// NewTable returns an uninitialized, empty Table.
func NewTable(name string) *Table {
	return &Table{
		Lifecycle: sim.Lifecycle{Owner: name},
		name:      name,
		series:    make(map[string]*tseries.Series[units.Value]),
		units:     make(map[string]units.Unit),
		current:   math.NaN(),
	}
}

func (t *Table) Name() string         { return t.name }
func (t *Table) Kind() string         { return TableKind }
func (t *Table) CurrentDate() float64 { return t.current }

// SeriesNames returns the names of the stored series in sorted order.
func (t *Table) SeriesNames() []string {
	names := make([]string, 0, len(t.series))
	for n := range t.series {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Series returns the named series, or nil. The series must not be modified.
func (t *Table) Series(name string) *tseries.Series[units.Value] { return t.series[name] }

func (t *Table) Variables() []sim.VarInfo {
	out := make([]sim.VarInfo, 0, len(t.series))
	for _, n := range t.SeriesNames() {
		out = append(out, sim.VarInfo{
			Name:        n,
			Unit:        t.units[n],
			Dated:       true,
			Readable:    true,
			Settable:    true,
			Description: "prescribed input series",
		})
	}
	return out
}

func (t *Table) Init(core sim.CoreHandle) error {
	if err := t.Transition("init", sim.Initialized, sim.Uninitialized); err != nil {
		return err
	}
	t.core = core
	log, err := core.OpenLog(t.name, false)
	if err != nil {
		return simerr.Rethrow(err, t.name+": opening log")
	}
	t.log = log
	return nil
}

func (t *Table) SendMessage(msg sim.MessageType, varName string, data sim.MessageData) (units.Value, error) {
	return sim.Dispatch(t, msg, varName, data)
}

func (t *Table) SetData(varName string, data sim.MessageData) error {
	if err := t.Require("setData", sim.AfterInit...); err != nil {
		return err
	}
	if sim.IsUndefined(data.Date) {
		return simerr.New(simerr.InvalidDate, "%s: date required for %s", t.name, varName)
	}
	if !sim.IsValidDate(data.Date) {
		return simerr.New(simerr.InvalidDate, "%s: invalid date %g for %s", t.name, data.Date, varName)
	}
	val, err := t.parse(varName, data)
	if err != nil {
		return simerr.Rethrow(err, "could not parse variable "+varName)
	}

	s, ok := t.series[varName]
	if !ok {
		if err := t.core.RegisterCapability(varName); err != nil {
			return err
		}
		s = tseries.NewUnitval()
		s.SetInterpolatable(true)
		t.series[varName] = s
		t.units[varName] = val.Unit()
		t.log.Debugf("new series %s (%s)", varName, val.Unit())
	}
	s.Set(data.Date, val)
	return nil
}

// parse converts data into a value in the series' units. The first value of a new
// series may carry any known unit.
func (t *Table) parse(varName string, data sim.MessageData) (units.Value, error) {
	want, known := t.units[varName]
	if data.ValueStr == "" {
		if !data.HasValue {
			return units.Value{}, simerr.New(simerr.InvalidValue, "no value supplied")
		}
		if known && data.Value.Unit() != want {
			return units.Value{}, simerr.New(simerr.UnitMismatch, "value has units %s, expected %s", data.Value.Unit(), want)
		}
		return data.Value, nil
	}
	if !known {
		want = units.Unitless
		if _, unitStr, ok := strings.Cut(strings.TrimSpace(data.ValueStr), " "); ok {
			u, err := units.ParseUnit(unitStr)
			if err != nil {
				return units.Value{}, err
			}
			want = u
		}
	}
	return units.Parse(data.ValueStr, want)
}

func (t *Table) GetData(varName string, date float64) (units.Value, error) {
	if err := t.Require("getData", sim.AfterInit...); err != nil {
		return units.Value{}, err
	}
	s, ok := t.series[varName]
	if !ok {
		return units.Value{}, simerr.New(simerr.UnknownVariable, "%s: caller is requesting unknown variable: %s", t.name, varName)
	}
	if sim.IsUndefined(date) {
		return units.Value{}, simerr.New(simerr.InvalidDate, "%s: date required for %s", t.name, varName)
	}
	v, err := s.Get(date)
	if err != nil {
		return units.Value{}, simerr.Rethrow(err, t.name+": reading "+varName)
	}
	return v, nil
}

func (t *Table) PrepareToRun() error {
	if err := t.Require("prepareToRun", sim.Initialized); err != nil {
		return err
	}
	if len(t.series) == 0 {
		return simerr.New(simerr.PreconditionError, "%s: no series have been set", t.name)
	}
	t.current = t.core.StartDate()
	return t.Transition("prepareToRun", sim.ReadyToRun, sim.Initialized)
}

// Run only advances the clock; the series are fixed inputs.
func (t *Table) Run(runToDate float64) error {
	if err := t.Require("run", sim.ReadyToRun, sim.Running); err != nil {
		return err
	}
	if runToDate <= t.current {
		return simerr.New(simerr.TimeStepError, "%s: cannot run from %g to %g", t.name, t.current, runToDate)
	}
	t.current = runToDate
	return t.Transition("run", sim.Running, sim.ReadyToRun, sim.Running)
}

func (t *Table) ShutDown() error {
	if err := t.Transition("shutDown", sim.ShutDown, sim.AfterInit...); err != nil {
		return err
	}
	if t.log == nil {
		return nil
	}
	return t.log.Close()
}

// Accept prefers a TableVisitor and falls back to the generic VisitComponent.
func (t *Table) Accept(v sim.Visitor) error {
	if err := t.Require("accept", sim.Initialized, sim.ReadyToRun, sim.Running, sim.ShutDown); err != nil {
		return err
	}
	if tv, ok := v.(TableVisitor); ok {
		return tv.VisitTable(t)
	}
	return v.VisitComponent(t)
}
