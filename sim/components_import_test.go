package sim_test

// Blank import triggers sim/components' init(), which registers the component kinds.
// This allows package sim's internal test files to build models through NewComponent
// without directly importing sim/components (which would create an import cycle).
import _ "github.com/hector-sim/hector-core/sim/components"
