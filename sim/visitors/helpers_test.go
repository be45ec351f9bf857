package visitors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hector-sim/hector-core/sim"
)

// forcedModel has a forcing table ahead of a dummy with slope 2 and flat c.
const forcedModel = `
version: "1"
core:
  run_name: visitors
  start_date: 0
  end_date: 10
  step: 1
  log_level: error
components:
  - name: forcing
    kind: table
    vars:
      "co2[0]": "280 ppmv"
      "co2[10]": "380 ppmv"
  - name: dummy
    kind: dummy
    vars:
      slope: "2"
      y: "0"
      "c[0]": "0"
      "c[10]": "0"
`

func buildModel(t *testing.T, doc string) (*sim.ModelConfig, *sim.Core) {
	t.Helper()
	cfg, err := sim.ParseModelConfig([]byte(doc))
	require.NoError(t, err)
	core, err := sim.BuildCore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if core.State() != sim.ShutDown {
			_ = core.ShutDown()
		}
	})
	return cfg, core
}
