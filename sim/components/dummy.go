// Package components holds the concrete component kinds. Each kind registers itself with
// sim's kind registry in register.go.
package components

import (
	"math"

	"github.com/hector-sim/hector-core/sim"
	"github.com/hector-sim/hector-core/sim/logging"
	"github.com/hector-sim/hector-core/sim/simerr"
	"github.com/hector-sim/hector-core/sim/tseries"
	"github.com/hector-sim/hector-core/sim/units"
)

const (
	DummyKind = "dummy"

	// DummySubStep is the fixed integration increment used inside Run.
	DummySubStep = 0.1

	subStepTolerance = 1e-9
)

// DummyVisitor is implemented by visitors with dedicated handling for Dummy.
type DummyVisitor interface {
	VisitDummy(d *Dummy) error
}

// Dummy is the reference component. It integrates
//
//	dy/dt = slope + dc/dt
//
// forward in sub-steps of DummySubStep, where c is an interpolated forcing series, and
// publishes y as the capability x.
type Dummy struct {
	sim.Lifecycle
	name string
	core sim.CoreHandle
	log  *logging.Channel

	slope    float64
	y        float64
	slopeSet bool
	ySet     bool
	c        *tseries.Series[float64]

	current float64
}

var dummyVars = sim.NewRegistry(DummyKind, map[string]sim.Variable[Dummy]{
	"slope": {
		Unit:        units.Unitless,
		Description: "rate of change of y per unit time",
		Get:         func(d *Dummy, _ float64) (units.Value, error) { return units.UnitlessValue(d.slope), nil },
		Set: func(d *Dummy, _ float64, v units.Value) error {
			d.slope, d.slopeSet = v.Value(), true
			return nil
		},
	},
	"y": {
		Unit:        units.Unitless,
		Description: "integrated state",
		Get:         func(d *Dummy, _ float64) (units.Value, error) { return units.UnitlessValue(d.y), nil },
		Set: func(d *Dummy, _ float64, v units.Value) error {
			d.y, d.ySet = v.Value(), true
			return nil
		},
	},
	"c": {
		Unit:        units.Unitless,
		Dated:       true,
		Description: "forcing series; its increments are added to y",
		Get: func(d *Dummy, date float64) (units.Value, error) {
			v, err := d.c.Get(date)
			if err != nil {
				return units.Value{}, simerr.Rethrow(err, "dummy: reading c")
			}
			return units.UnitlessValue(v), nil
		},
		Set: func(d *Dummy, date float64, v units.Value) error {
			d.c.Set(date, v.Value())
			return nil
		},
	},
	"x": {
		Unit:        units.Unitless,
		Description: "published value of y (read-only)",
		Get:         func(d *Dummy, _ float64) (units.Value, error) { return units.UnitlessValue(d.y), nil },
	},
})

// NewDummy returns an uninitialized Dummy.
func NewDummy(name string) *Dummy {
	c := tseries.NewFloat64()
	c.SetInterpolatable(true)
	return &Dummy{
		Lifecycle: sim.Lifecycle{Owner: name},
		name:      name,
		c:         c,
		current:   math.NaN(),
	}
}

func (d *Dummy) Name() string             { return d.name }
func (d *Dummy) Kind() string             { return DummyKind }
func (d *Dummy) CurrentDate() float64     { return d.current }
func (d *Dummy) Variables() []sim.VarInfo { return dummyVars.Variables() }
func (d *Dummy) MinRunSpan() float64      { return DummySubStep }

// Slope, Y and Forcing expose state to visitors. Forcing must not be modified.
func (d *Dummy) Slope() float64                    { return d.slope }
func (d *Dummy) Y() float64                        { return d.y }
func (d *Dummy) Forcing() *tseries.Series[float64] { return d.c }

func (d *Dummy) Init(core sim.CoreHandle) error {
	if err := d.Transition("init", sim.Initialized, sim.Uninitialized); err != nil {
		return err
	}
	d.core = core
	log, err := core.OpenLog(d.name, false)
	if err != nil {
		return simerr.Rethrow(err, d.name+": opening log")
	}
	d.log = log
	d.log.Debugf("hello %s", d.name)
	return core.RegisterCapability("x")
}

func (d *Dummy) SendMessage(msg sim.MessageType, varName string, data sim.MessageData) (units.Value, error) {
	return sim.Dispatch(d, msg, varName, data)
}

func (d *Dummy) SetData(varName string, data sim.MessageData) error {
	if err := d.Require("setData", sim.AfterInit...); err != nil {
		return err
	}
	return dummyVars.Set(d, varName, data)
}

func (d *Dummy) GetData(varName string, date float64) (units.Value, error) {
	if err := d.Require("getData", sim.AfterInit...); err != nil {
		return units.Value{}, err
	}
	return dummyVars.Get(d, varName, date)
}

func (d *Dummy) PrepareToRun() error {
	if err := d.Require("prepareToRun", sim.Initialized); err != nil {
		return err
	}
	d.log.Debugf("prepareToRun")
	switch {
	case !d.slopeSet:
		return simerr.New(simerr.PreconditionError, "%s: slope has not been set", d.name)
	case !d.ySet:
		return simerr.New(simerr.PreconditionError, "%s: y has not been set", d.name)
	case d.c.Size() == 0:
		return simerr.New(simerr.PreconditionError, "%s: c is empty", d.name)
	}
	d.current = d.core.StartDate()
	return d.Transition("prepareToRun", sim.ReadyToRun, sim.Initialized)
}

// Run integrates from the current date to runToDate. The span must cover at least one
// sub-step; the final sub-step is shortened so the clock lands exactly on runToDate.
// On failure y and the clock are left as they were.
func (d *Dummy) Run(runToDate float64) error {
	if err := d.Require("run", sim.ReadyToRun, sim.Running); err != nil {
		return err
	}
	span := runToDate - d.current
	if span < DummySubStep-subStepTolerance {
		return simerr.New(simerr.TimeStepError, "%s: time step error: cannot run from %g to %g (sub-step %g)",
			d.name, d.current, runToDate, DummySubStep)
	}
	if err := d.Transition("run", sim.Running, sim.ReadyToRun, sim.Running); err != nil {
		return err
	}

	start := d.current
	n := int(math.Ceil(span/DummySubStep - subStepTolerance))
	prev, y := start, d.y
	for i := 1; i <= n; i++ {
		next := start + float64(i)*DummySubStep
		if i == n {
			next = runToDate
		}
		cPrev, err := d.c.Get(prev)
		if err != nil {
			return simerr.Rethrow(err, d.name+": forcing c")
		}
		cNext, err := d.c.Get(next)
		if err != nil {
			return simerr.Rethrow(err, d.name+": forcing c")
		}
		y += d.slope*(next-prev) + cNext - cPrev
		d.log.Debugf("Y = %g at x %g", y, next)
		prev = next
	}
	d.y, d.current = y, runToDate
	return nil
}

func (d *Dummy) ShutDown() error {
	if err := d.Transition("shutDown", sim.ShutDown, sim.AfterInit...); err != nil {
		return err
	}
	if d.log == nil {
		return nil
	}
	d.log.Debugf("goodbye %s", d.name)
	return d.log.Close()
}

// Accept prefers a DummyVisitor and falls back to the generic VisitComponent.
func (d *Dummy) Accept(v sim.Visitor) error {
	if err := d.Require("accept", sim.Initialized, sim.ReadyToRun, sim.Running, sim.ShutDown); err != nil {
		return err
	}
	if dv, ok := v.(DummyVisitor); ok {
		return dv.VisitDummy(d)
	}
	return v.VisitComponent(d)
}
