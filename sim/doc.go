// Package sim provides the component runtime: an orchestrator core that steps a set
// of registered components through a discrete-time run.
//
// # Reading Guide
//
// Start with these three files to understand the runtime:
//   - component.go: the Component contract, the narrow CoreHandle and the kind registry
//   - lifecycle.go: the Uninitialized → Initialized → ReadyToRun → Running → ShutDown state machine
//   - core.go: capability routing, the step loop, visitors and shutdown
//
// # Architecture
//
// The sim package defines interfaces and bridge types; implementations live in
// sub-packages:
//   - sim/components/: concrete kinds (dummy, table)
//   - sim/visitors/: output extractors (CSV stream, restart snapshot, recorder)
//   - sim/units/, sim/tseries/: unit-tagged values and dated series
//   - sim/simerr/: structured errors with raise site and causal chain
//   - sim/logging/: per-component logging channels
//   - sim/trace/: message trace recording
//
// Sub-packages register their component kinds via init() functions that call
// RegisterKind, so a model file can name a kind without sim importing it.
//
// # Messages
//
// Components exchange values only through the core. SendMessage routes a getData or
// setData message to the component that registered the variable as a capability;
// SetData addresses a component by name. Dated variables take a date, scalar ones
// take UndefinedIndex().
//
// # Key Interfaces
//
//   - Component: a model part with variables, driven through its lifecycle by the core
//   - CoreHandle: what a component sees of the core (routed reads, capabilities, logs)
//   - Visitor: read-only extractor offered the core and every component at chosen dates
package sim
