package sim_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hector-sim/hector-core/sim"
	"github.com/hector-sim/hector-core/sim/internal/testutil"
)

// TestGoldenDataset runs every example model to its end date and checks the final
// values recorded in testdata/golden.yaml.
func TestGoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			cfg, err := sim.LoadModelConfig(testutil.ModelPath(t, tc.Model))
			require.NoError(t, err)
			cfg.Core.LogLevel = "error"
			core, err := sim.BuildCore(cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = core.ShutDown() })

			require.NoError(t, core.PrepareToRun())
			require.NoError(t, core.Run(core.EndDate()))

			for _, e := range tc.Expect {
				comp := core.Component(e.Component)
				require.NotNil(t, comp, e.Component)
				date := sim.UndefinedIndex()
				if e.Date != nil {
					date = *e.Date
				}
				got, err := comp.GetData(e.Variable, date)
				require.NoError(t, err)
				testutil.AssertFloat64Equal(t, e.Component+"."+e.Variable, e.Want, got.Value(), tc.RelTol)
			}
		})
	}
}
