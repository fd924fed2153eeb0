package stochastic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offload-sim/offload-sim/sim"
)

func TestDecode_NormalizesPerState(t *testing.T) {
	cfg := smallConfig()
	values := make([]float64, cfg.VariableCount())
	s := sim.State{TaskQueueLength: 2}
	values[cfg.VariableIndex(sim.Index{State: s, Action: sim.NoOperation})] = 0.1
	values[cfg.VariableIndex(sim.Index{State: s, Action: sim.AddToCPU})] = 0.1
	values[cfg.VariableIndex(sim.Index{State: s, Action: sim.AddToBothUnits})] = 0.2
	other := sim.State{TaskQueueLength: 1, TUState: 1}
	values[cfg.VariableIndex(sim.Index{State: other, Action: sim.AddToCPU})] = 0.6

	decisions, err := Decode(cfg, values)
	require.NoError(t, err)
	assert.Len(t, decisions, cfg.VariableCount())

	assert.InDelta(t, 0.25, decisions[sim.Index{State: s, Action: sim.NoOperation}], 1e-12)
	assert.InDelta(t, 0.25, decisions[sim.Index{State: s, Action: sim.AddToCPU}], 1e-12)
	assert.InDelta(t, 0.5, decisions[sim.Index{State: s, Action: sim.AddToBothUnits}], 1e-12)
	assert.InDelta(t, 1.0, decisions[sim.Index{State: other, Action: sim.AddToCPU}], 1e-12)
}

func TestDecode_EveryStateSumsToOne(t *testing.T) {
	cfg := smallConfig()
	values := make([]float64, cfg.VariableCount())
	for i := range values {
		values[i] = float64(i%7) / 10
	}

	decisions, err := Decode(cfg, values)
	require.NoError(t, err)
	for _, s := range cfg.AllStates() {
		sum := 0.0
		for _, a := range sim.AllActions {
			sum += decisions[sim.Index{State: s, Action: a}]
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "state %s", s)
	}
}

func TestDecode_ZeroMarginalDefaultsToNoOperation(t *testing.T) {
	cfg := smallConfig()
	decisions, err := Decode(cfg, make([]float64, cfg.VariableCount()))
	require.NoError(t, err)
	for _, s := range cfg.AllStates() {
		assert.Equal(t, 1.0, decisions[sim.Index{State: s, Action: sim.NoOperation}])
		assert.Equal(t, 0.0, decisions[sim.Index{State: s, Action: sim.AddToCPU}])
	}
}

func TestDecode_LengthMismatch(t *testing.T) {
	_, err := Decode(smallConfig(), make([]float64, 3))
	assert.ErrorIs(t, err, ErrVariableCountMismatch)
}
