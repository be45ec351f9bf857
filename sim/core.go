package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hector-sim/hector-core/sim/logging"
	"github.com/hector-sim/hector-core/sim/simerr"
	"github.com/hector-sim/hector-core/sim/trace"
	"github.com/hector-sim/hector-core/sim/units"
)

// dateEpsilon absorbs floating-point drift when comparing simulation dates.
const dateEpsilon = 1e-9

// CoreConfig holds the run-wide settings shared by every component.
type CoreConfig struct {
	RunName   string
	StartDate float64 // components begin at this date; the first step ends at StartDate+Step
	EndDate   float64
	Step      float64
	Log       logging.Config
	LogLevel  logrus.Level // used as given; the zero value is logrus.PanicLevel
	Trace     trace.TraceLevel
}

// Core owns the components, routes messages between them and drives the run.
//
// Thread-safety: NOT thread-safe. A Core and its components are single-threaded.
type Core struct {
	Lifecycle
	cfg   CoreConfig
	runID string

	components   []Component // in add order; this is also run order
	byName       map[string]Component
	capabilities map[string]Component
	visitors     []Visitor

	currentDate float64   // last completed core step
	running     Component // component whose Run is in progress, nil otherwise
	stepDate    float64   // target date of the step in progress

	log   *logging.Channel
	trace *trace.SimulationTrace
}

// NewCore validates cfg and returns an empty core.
func NewCore(cfg CoreConfig) (*Core, error) {
	if cfg.Step <= 0 || math.IsNaN(cfg.Step) {
		return nil, simerr.New(simerr.ConfigError, "core step must be positive, got %g", cfg.Step)
	}
	if !(cfg.StartDate < cfg.EndDate) {
		return nil, simerr.New(simerr.ConfigError, "start date %g must be before end date %g", cfg.StartDate, cfg.EndDate)
	}
	if !trace.IsValidTraceLevel(string(cfg.Trace)) {
		return nil, simerr.New(simerr.ConfigError, "unknown trace level %q", cfg.Trace)
	}
	if cfg.RunName == "" {
		cfg.RunName = "default"
	}
	return &Core{
		Lifecycle:    Lifecycle{Owner: "core"},
		cfg:          cfg,
		runID:        uuid.NewString(),
		byName:       make(map[string]Component),
		capabilities: make(map[string]Component),
		currentDate:  cfg.StartDate,
		trace:        trace.NewSimulationTrace(trace.TraceConfig{Level: cfg.Trace}),
	}, nil
}

func (c *Core) RunName() string                 { return c.cfg.RunName }
func (c *Core) RunID() string                   { return c.runID }
func (c *Core) StartDate() float64              { return c.cfg.StartDate }
func (c *Core) EndDate() float64                { return c.cfg.EndDate }
func (c *Core) CurrentDate() float64            { return c.currentDate }
func (c *Core) UndefinedIndex() float64         { return UndefinedIndex() }
func (c *Core) Trace() *trace.SimulationTrace   { return c.trace }
func (c *Core) Component(name string) Component { return c.byName[name] }

// Components returns the components in run order.
func (c *Core) Components() []Component {
	out := make([]Component, len(c.components))
	copy(out, c.components)
	return out
}

// Capabilities maps each registered variable to the name of the component providing it.
func (c *Core) Capabilities() map[string]string {
	out := make(map[string]string, len(c.capabilities))
	for v, comp := range c.capabilities {
		out[v] = comp.Name()
	}
	return out
}

// AddComponent appends comp to the run order. Only valid before Init.
func (c *Core) AddComponent(comp Component) error {
	if err := c.Require("addComponent", Uninitialized); err != nil {
		return err
	}
	if _, dup := c.byName[comp.Name()]; dup {
		return simerr.New(simerr.ConfigError, "duplicate component name %q", comp.Name())
	}
	c.components = append(c.components, comp)
	c.byName[comp.Name()] = comp
	return nil
}

// AddVisitor registers v to be offered every completed core step.
func (c *Core) AddVisitor(v Visitor) {
	c.visitors = append(c.visitors, v)
}

// Init opens the core log and initializes every component in order.
func (c *Core) Init() error {
	if err := c.Transition("init", Initialized, Uninitialized); err != nil {
		return err
	}
	c.log = logging.NewChannel(c.cfg.Log)
	if err := c.log.Open("core", false, c.cfg.LogLevel); err != nil {
		return err
	}
	c.log.Infof("run %s (%s): %d components, dates %g to %g step %g",
		c.cfg.RunName, c.runID, len(c.components), c.cfg.StartDate, c.cfg.EndDate, c.cfg.Step)
	for _, comp := range c.components {
		if err := comp.Init(&coreHandle{core: c, caller: comp}); err != nil {
			return simerr.Rethrow(err, "initializing "+comp.Name())
		}
	}
	return nil
}

// SetData delivers a SetData message to the named component.
func (c *Core) SetData(component, varName string, data MessageData) error {
	if err := c.Require("setData", AfterInit...); err != nil {
		return err
	}
	comp, ok := c.byName[component]
	if !ok {
		return simerr.New(simerr.ConfigError, "unknown component %q", component)
	}
	_, err := comp.SendMessage(SetData, varName, data)
	c.record(nil, comp, SetData, varName, data.Date, err)
	return err
}

// SendMessage delivers a message to the component providing varName as a capability.
func (c *Core) SendMessage(msg MessageType, varName string, data MessageData) (units.Value, error) {
	if err := c.Require("sendMessage", AfterInit...); err != nil {
		return units.Value{}, err
	}
	owner, err := c.provider(varName)
	if err != nil {
		return units.Value{}, err
	}
	val, err := owner.SendMessage(msg, varName, data)
	c.record(nil, owner, msg, varName, data.Date, err)
	return val, err
}

// PrepareToRun checks every component's inputs. Errors name the failing component.
func (c *Core) PrepareToRun() error {
	if err := c.Transition("prepareToRun", ReadyToRun, Initialized); err != nil {
		return err
	}
	for _, comp := range c.components {
		if err := comp.PrepareToRun(); err != nil {
			return simerr.Rethrow(err, "preparing "+comp.Name())
		}
	}
	c.currentDate = c.cfg.StartDate
	return nil
}

// Run advances every component, one core step at a time, until runToDate. The last
// step is shortened to land on runToDate when the range is not a whole number of steps;
// a remainder shorter than any component's MinRunSpan is merged into the step before
// it. Visitors are offered each completed step.
func (c *Core) Run(runToDate float64) error {
	if err := c.Transition("run", Running, ReadyToRun, Running); err != nil {
		return err
	}
	if runToDate > c.cfg.EndDate+dateEpsilon {
		return simerr.New(simerr.TimeStepError, "run date %g is past the end date %g", runToDate, c.cfg.EndDate)
	}
	if runToDate <= c.currentDate+dateEpsilon {
		return simerr.New(simerr.TimeStepError, "run date %g is not after the current date %g", runToDate, c.currentDate)
	}

	start := c.currentDate
	n := int(math.Ceil((runToDate-start)/c.cfg.Step - dateEpsilon))
	if n > 1 {
		last := runToDate - (start + float64(n-1)*c.cfg.Step)
		if minSpan := c.minRunSpan(); last < minSpan-dateEpsilon {
			c.log.Debugf("merging final step of %g into the previous step (min span %g)", last, minSpan)
			n--
		}
	}
	for i := 1; i <= n; i++ {
		date := start + float64(i)*c.cfg.Step
		if i == n {
			date = runToDate
		}
		if err := c.step(date); err != nil {
			return err
		}
	}
	return nil
}

// minRunSpan is the largest MinRunSpan over the components, or 0.
func (c *Core) minRunSpan() float64 {
	span := 0.0
	for _, comp := range c.components {
		if ms, ok := comp.(MinSpanner); ok && ms.MinRunSpan() > span {
			span = ms.MinRunSpan()
		}
	}
	return span
}

func (c *Core) step(date float64) error {
	for _, comp := range c.components {
		c.running, c.stepDate = comp, date
		err := comp.Run(date)
		c.running = nil
		if err != nil {
			return simerr.Rethrow(err, fmt.Sprintf("running %s to %g", comp.Name(), date))
		}
	}
	c.currentDate = date
	c.trace.RecordStep(trace.StepRecord{Date: date, Components: len(c.components)})
	c.log.Debugf("completed step %g", date)

	for _, v := range c.visitors {
		if !v.ShouldVisit(date) {
			continue
		}
		if err := c.Accept(v); err != nil {
			return simerr.Rethrow(err, fmt.Sprintf("visiting step %g", date))
		}
	}
	return nil
}

// Accept walks v over the core and then each component in run order.
func (c *Core) Accept(v Visitor) error {
	if err := v.VisitCore(c); err != nil {
		return err
	}
	for _, comp := range c.components {
		if err := comp.Accept(v); err != nil {
			return simerr.Rethrow(err, "visiting "+comp.Name())
		}
	}
	return nil
}

// ShutDown shuts down every component that was initialized, then closes the core log.
// All failures are reported together.
func (c *Core) ShutDown() error {
	if c.State() == ShutDown {
		return simerr.New(simerr.LifecycleError, "core: shutDown called twice")
	}
	var errs []error
	for _, comp := range c.components {
		switch comp.State() {
		case Initialized, ReadyToRun, Running:
			if err := comp.ShutDown(); err != nil {
				errs = append(errs, simerr.Rethrow(err, "shutting down "+comp.Name()))
			}
		}
	}
	if c.log != nil && c.log.IsOpen() {
		c.log.Infof("shut down at %g", c.currentDate)
		if err := c.log.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.state = ShutDown
	return errors.Join(errs...)
}

// Execute runs the full lifecycle to the end date. The core is shut down on every
// exit path, including when Init, PrepareToRun or Run fails.
func (c *Core) Execute() (err error) {
	defer func() {
		if c.State() != ShutDown {
			err = errors.Join(err, c.ShutDown())
		}
	}()
	if c.State() == Uninitialized {
		if err := c.Init(); err != nil {
			return err
		}
	}
	if c.State() == Initialized {
		if err := c.PrepareToRun(); err != nil {
			return err
		}
	}
	if c.currentDate < c.cfg.EndDate-dateEpsilon {
		if err := c.Run(c.cfg.EndDate); err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) provider(varName string) (Component, error) {
	owner, ok := c.capabilities[varName]
	if !ok {
		return nil, simerr.New(simerr.UnknownVariable, "no component provides capability %q", varName)
	}
	return owner, nil
}

// read serves a component's GetData request. While caller is running, the provider
// must already have computed the requested date.
func (c *Core) read(caller Component, varName string, date float64) (units.Value, error) {
	owner, err := c.provider(varName)
	if err != nil {
		return units.Value{}, err
	}
	if c.running != nil && c.running == caller && owner != caller {
		want := date
		if IsUndefined(date) {
			want = c.stepDate
		}
		if computed := owner.CurrentDate(); want > computed+dateEpsilon {
			err := simerr.New(simerr.OrderingError, "%s reads %s at %g but %s has only computed to %g",
				caller.Name(), varName, want, owner.Name(), computed)
			c.record(caller, owner, GetData, varName, date, err)
			return units.Value{}, err
		}
	}
	val, err := owner.SendMessage(GetData, varName, Query(date))
	c.record(caller, owner, GetData, varName, date, err)
	return val, err
}

func (c *Core) registerCapability(owner Component, varName string) error {
	if prev, ok := c.capabilities[varName]; ok && prev != owner {
		return simerr.New(simerr.ConfigError, "capability %q already provided by %s", varName, prev.Name())
	}
	c.capabilities[varName] = owner
	c.log.Debugf("%s provides %s", owner.Name(), varName)
	return nil
}

func (c *Core) record(caller, target Component, msg MessageType, varName string, date float64, err error) {
	if !c.trace.Enabled() {
		return
	}
	rec := trace.MessageRecord{
		Clock:    c.currentDate,
		Target:   target.Name(),
		Type:     string(msg),
		Variable: varName,
		Date:     date,
	}
	if caller != nil {
		rec.Caller = caller.Name()
	}
	if err != nil {
		rec.Err = err.Error()
	}
	c.trace.RecordMessage(rec)
}

// coreHandle binds a component to the core so reads can be attributed and ordered.
type coreHandle struct {
	core   *Core
	caller Component
}

func (h *coreHandle) GetData(varName string, date float64) (units.Value, error) {
	return h.core.read(h.caller, varName, date)
}

func (h *coreHandle) RegisterCapability(varName string) error {
	return h.core.registerCapability(h.caller, varName)
}

func (h *coreHandle) StartDate() float64 { return h.core.cfg.StartDate }

// OpenLog opens a channel at the core's log level, writing where the core does.
func (h *coreHandle) OpenLog(name string, appendMode bool) (*logging.Channel, error) {
	ch := logging.NewChannel(h.core.cfg.Log)
	if err := ch.Open(name, appendMode, h.core.cfg.LogLevel); err != nil {
		return nil, err
	}
	return ch, nil
}
