package sim

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/hector-sim/hector-core/sim/logging"
	"github.com/hector-sim/hector-core/sim/simerr"
	"github.com/hector-sim/hector-core/sim/units"
)

// stubComponent is a minimal Component for exercising the core. It publishes `value`
// under the capability `provides` (if set) and, during Run, optionally reads `reads`
// through its core handle.
type stubComponent struct {
	Lifecycle
	name     string
	provides string
	reads    string
	readDate float64 // date used for the read; UndefinedIndex for undated

	core    CoreHandle
	log     *logging.Channel
	value   float64
	current float64

	runDates   []float64
	lastRead   units.Value
	failInit   error
	failPrep   error
	failRun    error
	failShut   error
	visitCount int
	minSpan    float64 // reported as MinRunSpan
}

func newStub(name string) *stubComponent {
	return &stubComponent{Lifecycle: Lifecycle{Owner: name}, name: name, readDate: UndefinedIndex()}
}

func (s *stubComponent) Name() string         { return s.name }
func (s *stubComponent) Kind() string         { return "stub" }
func (s *stubComponent) CurrentDate() float64 { return s.current }
func (s *stubComponent) Variables() []VarInfo { return nil }
func (s *stubComponent) MinRunSpan() float64  { return s.minSpan }

func (s *stubComponent) Init(core CoreHandle) error {
	if err := s.Transition("init", Initialized, Uninitialized); err != nil {
		return err
	}
	if s.failInit != nil {
		return s.failInit
	}
	s.core = core
	log, err := core.OpenLog(s.name, false)
	if err != nil {
		return err
	}
	s.log = log
	if s.provides != "" {
		return core.RegisterCapability(s.provides)
	}
	return nil
}

func (s *stubComponent) SendMessage(msg MessageType, varName string, data MessageData) (units.Value, error) {
	return Dispatch(s, msg, varName, data)
}

func (s *stubComponent) SetData(varName string, data MessageData) error {
	if varName != s.provides {
		return simerr.New(simerr.UnknownVariable, "unknown variable %s", varName)
	}
	v, err := units.Parse(data.ValueStr, units.Unitless)
	if err != nil {
		return err
	}
	s.value = v.Value()
	return nil
}

func (s *stubComponent) GetData(varName string, date float64) (units.Value, error) {
	if varName != s.provides {
		return units.Value{}, simerr.New(simerr.UnknownVariable, "unknown variable %s", varName)
	}
	return units.UnitlessValue(s.value), nil
}

func (s *stubComponent) PrepareToRun() error {
	if s.failPrep != nil {
		return s.failPrep
	}
	s.current = s.core.StartDate()
	return s.Transition("prepareToRun", ReadyToRun, Initialized)
}

func (s *stubComponent) Run(runToDate float64) error {
	if err := s.Transition("run", Running, ReadyToRun, Running); err != nil {
		return err
	}
	if s.failRun != nil {
		return s.failRun
	}
	if s.reads != "" {
		v, err := s.core.GetData(s.reads, s.readDate)
		if err != nil {
			return err
		}
		s.lastRead = v
	}
	s.runDates = append(s.runDates, runToDate)
	s.current = runToDate
	return nil
}

func (s *stubComponent) ShutDown() error {
	if err := s.Transition("shutDown", ShutDown, AfterInit...); err != nil {
		return err
	}
	if s.log != nil {
		if err := s.log.Close(); err != nil {
			return err
		}
	}
	return s.failShut
}

func (s *stubComponent) Accept(v Visitor) error {
	s.visitCount++
	return v.VisitComponent(s)
}

// countingVisitor records the dates it was offered and what it visited.
type countingVisitor struct {
	every      float64 // visit only dates divisible by every; 0 visits all
	coreDates  []float64
	components []string
}

func (v *countingVisitor) ShouldVisit(date float64) bool {
	if v.every == 0 {
		return true
	}
	return int(date*1000)%int(v.every*1000) == 0
}

func (v *countingVisitor) VisitCore(c *Core) error {
	v.coreDates = append(v.coreDates, c.CurrentDate())
	return nil
}

func (v *countingVisitor) VisitComponent(c Component) error {
	v.components = append(v.components, c.Name())
	return nil
}

// quietConfig is a core config whose channels write nowhere.
func quietConfig() CoreConfig {
	return CoreConfig{
		RunName:   "test",
		StartDate: 0,
		EndDate:   10,
		Step:      1,
		Log:       logging.Config{Output: io.Discard},
		LogLevel:  logrus.DebugLevel,
	}
}

// newTestCore builds a core over comps and initializes it.
func newTestCore(t *testing.T, cfg CoreConfig, comps ...Component) *Core {
	t.Helper()
	core, err := NewCore(cfg)
	require.NoError(t, err)
	for _, c := range comps {
		require.NoError(t, core.AddComponent(c))
	}
	require.NoError(t, core.Init())
	return core
}
