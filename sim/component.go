package sim

import (
	"fmt"
	"sort"

	"github.com/hector-sim/hector-core/sim/logging"
	"github.com/hector-sim/hector-core/sim/simerr"
	"github.com/hector-sim/hector-core/sim/units"
)

// Component is a model building block. The core drives every component through
// Init → PrepareToRun → Run (repeatedly) → ShutDown, and all data exchange goes through
// SendMessage.
type Component interface {
	Name() string
	Kind() string
	State() State

	// Init opens the component's log and registers the capabilities it provides.
	Init(core CoreHandle) error
	SendMessage(msg MessageType, varName string, data MessageData) (units.Value, error)
	SetData(varName string, data MessageData) error
	GetData(varName string, date float64) (units.Value, error)
	// PrepareToRun checks that all required inputs have been set.
	PrepareToRun() error
	// Run advances the component's clock to runToDate.
	Run(runToDate float64) error
	// ShutDown releases the log and any other resources. Called at most once.
	ShutDown() error
	Accept(v Visitor) error

	// CurrentDate is the last date the component has computed.
	CurrentDate() float64
	Variables() []VarInfo
}

// CoreHandle is what a component sees of the core.
type CoreHandle interface {
	// GetData reads a variable from whichever component registered it as a capability.
	GetData(varName string, date float64) (units.Value, error)
	RegisterCapability(varName string) error
	StartDate() float64
	OpenLog(name string, appendMode bool) (*logging.Channel, error)
}

// Visitor walks the core and its components, typically once per completed core step.
// Component kinds may define narrower visitor interfaces (for example a VisitDummy
// method); Accept checks for those first and falls back to VisitComponent.
type Visitor interface {
	ShouldVisit(date float64) bool
	VisitCore(core *Core) error
	VisitComponent(c Component) error
}

// MinSpanner is implemented by components whose Run needs a minimum span, such as a
// fixed integration sub-step. The core folds a final step shorter than the largest
// minimum span into the step before it.
type MinSpanner interface {
	MinRunSpan() float64
}

// NewComponentFunc builds an unconfigured component of one kind.
type NewComponentFunc func(name string) Component

// componentKinds is populated by init() in the packages that implement components
// (see sim/components/register.go).
var componentKinds = map[string]NewComponentFunc{}

// RegisterKind makes kind constructible by NewComponent. Panics on duplicate kinds.
func RegisterKind(kind string, ctor NewComponentFunc) {
	if _, dup := componentKinds[kind]; dup {
		panic(fmt.Sprintf("component kind %q registered twice", kind))
	}
	componentKinds[kind] = ctor
}

// IsValidKind returns true if kind has a registered constructor.
func IsValidKind(kind string) bool {
	_, ok := componentKinds[kind]
	return ok
}

// KindNames returns registered kinds in sorted order.
func KindNames() []string {
	names := make([]string, 0, len(componentKinds))
	for k := range componentKinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NewComponent builds a component of a registered kind.
func NewComponent(kind, name string) (Component, error) {
	ctor, ok := componentKinds[kind]
	if !ok {
		return nil, simerr.New(simerr.ConfigError, "unknown component kind %q (valid: %v)", kind, KindNames())
	}
	return ctor(name), nil
}
