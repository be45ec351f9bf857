// register.go wires the component kinds into sim's kind registry. This init() runs
// when any package imports sim/components; test code in package sim uses
// components_import_test.go for the blank import.
package components

import "github.com/hector-sim/hector-core/sim"

func init() {
	sim.RegisterKind(DummyKind, func(name string) sim.Component { return NewDummy(name) })
	sim.RegisterKind(TableKind, func(name string) sim.Component { return NewTable(name) })
}
