package stochastic

import (
	"fmt"

	"github.com/offload-sim/offload-sim/sim"
)

// Decode turns stationary (state, action) frequencies into conditional
// decision probabilities P(action | state) = x(s,a) / Σ_a' x(s,a').
//
// States the optimal chain never visits have no defined conditional; they
// get NoOperation with probability 1.
func Decode(cfg sim.Config, values []float64) (map[sim.Index]float64, error) {
	if len(values) != cfg.VariableCount() {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrVariableCountMismatch, len(values), cfg.VariableCount())
	}

	marginals := make(map[sim.State]float64, cfg.StateCount())
	for idx, v := range values {
		marginals[cfg.DecodeIndex(idx).State] += v
	}

	decisions := make(map[sim.Index]float64, len(values))
	for idx, v := range values {
		ix := cfg.DecodeIndex(idx)
		marginal := marginals[ix.State]
		switch {
		case marginal > 0:
			decisions[ix] = v / marginal
		case ix.Action == sim.NoOperation:
			decisions[ix] = 1
		default:
			decisions[ix] = 0
		}
	}
	return decisions, nil
}
