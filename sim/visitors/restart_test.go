package visitors

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hector-sim/hector-core/sim"
	"github.com/hector-sim/hector-core/sim/components"
)

func TestRestart_CapturesStateAtDate(t *testing.T) {
	// GIVEN a restart visitor at date 5
	_, core := buildModel(t, forcedModel)
	r := NewRestart(5)
	core.AddVisitor(r)

	// WHEN running past it
	require.NoError(t, core.PrepareToRun())
	require.NoError(t, core.Run(8))

	// THEN the snapshot holds each component's restartable state at 5
	s := r.Snapshot()
	require.NotNil(t, s)
	assert.Equal(t, 5.0, s.Date)
	assert.Equal(t, core.RunID(), s.RunID)
	assert.Equal(t, "visitors", s.RunName)
	require.Len(t, s.Components, 2)

	forcing := s.Components[0]
	assert.Equal(t, "table", forcing.Kind)
	assert.Equal(t, "280 ppmv CO2", forcing.Vars["co2[0]"])
	assert.Equal(t, "380 ppmv CO2", forcing.Vars["co2[10]"])

	dummy := s.Components[1]
	assert.Equal(t, "2", dummy.Vars["slope"])
	assert.Equal(t, "0", dummy.Vars["c[10]"])
	assert.Contains(t, dummy.Vars, "y")
}

func TestRestart_WriteWithoutCapture(t *testing.T) {
	r := NewRestart(50)

	assert.Error(t, r.Write(filepath.Join(t.TempDir(), "restart.yaml")))
}

func TestRestart_ResumeContinuesRun(t *testing.T) {
	// GIVEN a snapshot taken halfway through a run, written and read back
	_, core := buildModel(t, forcedModel)
	r := NewRestart(5)
	core.AddVisitor(r)
	require.NoError(t, core.PrepareToRun())
	require.NoError(t, core.Run(10))
	full := core.Component("dummy").(*components.Dummy).Y()

	path := filepath.Join(t.TempDir(), "restart.yaml")
	require.NoError(t, r.Write(path))
	snap, err := LoadSnapshot(path)
	require.NoError(t, err)

	// WHEN a fresh model resumes from it
	cfg, err := sim.ParseModelConfig([]byte(forcedModel))
	require.NoError(t, err)
	require.NoError(t, snap.Resume(cfg))
	assert.Equal(t, 5.0, cfg.Core.StartDate)
	_, resumed := buildModelFromConfig(t, cfg)
	require.NoError(t, resumed.PrepareToRun())
	require.NoError(t, resumed.Run(10))

	// THEN it ends where the uninterrupted run ended
	assert.InDelta(t, full, resumed.Component("dummy").(*components.Dummy).Y(), 1e-9)
}

func TestSnapshot_ResumeRejectsMismatches(t *testing.T) {
	cfg, err := sim.ParseModelConfig([]byte(forcedModel))
	require.NoError(t, err)

	late := &Snapshot{Date: 10}
	assert.ErrorContains(t, late.Resume(cfg), "not before end date")

	wrongKind := &Snapshot{Date: 1, Components: []ComponentSnapshot{{Name: "dummy", Kind: "table"}}}
	assert.ErrorContains(t, wrongKind.Resume(cfg), "has kind table")
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorContains(t, err, "reading restart")
}

func buildModelFromConfig(t *testing.T, cfg *sim.ModelConfig) (*sim.ModelConfig, *sim.Core) {
	t.Helper()
	core, err := sim.BuildCore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if core.State() != sim.ShutDown {
			_ = core.ShutDown()
		}
	})
	return cfg, core
}
