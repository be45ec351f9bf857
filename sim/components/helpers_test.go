package components

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/hector-sim/hector-core/sim"
	"github.com/hector-sim/hector-core/sim/logging"
)

// newCore builds and initializes a quiet core over comps, running from 0 to 10 in
// steps of 1.
func newCore(t *testing.T, comps ...sim.Component) *sim.Core {
	t.Helper()
	core, err := sim.NewCore(sim.CoreConfig{
		RunName:   "components-test",
		StartDate: 0,
		EndDate:   10,
		Step:      1,
		Log:       logging.Config{Output: io.Discard},
		LogLevel:  logrus.DebugLevel,
	})
	require.NoError(t, err)
	for _, c := range comps {
		require.NoError(t, core.AddComponent(c))
	}
	require.NoError(t, core.Init())
	t.Cleanup(func() {
		if core.State() != sim.ShutDown {
			_ = core.ShutDown()
		}
	})
	return core
}

// readyDummy returns an initialized Dummy with slope, y and a flat c over [0, 10].
func readyDummy(t *testing.T, slope string) *Dummy {
	t.Helper()
	d := NewDummy("dummy")
	newCore(t, d)
	require.NoError(t, d.SetData("slope", sim.NoDate(slope)))
	require.NoError(t, d.SetData("y", sim.NoDate("0")))
	require.NoError(t, d.SetData("c", sim.AtDate(0, "0")))
	require.NoError(t, d.SetData("c", sim.AtDate(10, "0")))
	return d
}

// kindVisitor records which visit method ran.
type kindVisitor struct {
	dummies  []string
	tables   []string
	generics []string
}

func (v *kindVisitor) ShouldVisit(float64) bool  { return true }
func (v *kindVisitor) VisitCore(*sim.Core) error { return nil }

func (v *kindVisitor) VisitDummy(d *Dummy) error {
	v.dummies = append(v.dummies, d.Name())
	return nil
}

func (v *kindVisitor) VisitTable(t *Table) error {
	v.tables = append(v.tables, t.Name())
	return nil
}

func (v *kindVisitor) VisitComponent(c sim.Component) error {
	v.generics = append(v.generics, c.Name())
	return nil
}

// genericVisitor only knows the generic method.
type genericVisitor struct{ visited []string }

func (v *genericVisitor) ShouldVisit(float64) bool  { return true }
func (v *genericVisitor) VisitCore(*sim.Core) error { return nil }
func (v *genericVisitor) VisitComponent(c sim.Component) error {
	v.visited = append(v.visited, c.Name())
	return nil
}
