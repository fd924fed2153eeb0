package policy

import "github.com/offload-sim/offload-sim/sim"

// Stochastic draws an action per state from conditional decision
// probabilities. Built once by the optimizer and never mutated.
type Stochastic struct {
	Eta          float64
	Objective    float64 // objective value of the winning program
	AverageDelay float64
	AveragePower float64
	Decisions    map[sim.Index]float64 // P(action | state)
}

func (p *Stochastic) Name() string { return "stochastic" }

// Distribution returns the decision probabilities of state. States the
// policy knows nothing about fall back to NoOperation.
func (p *Stochastic) Distribution(s sim.State) Distribution {
	var d Distribution
	for _, a := range sim.AllActions {
		d[a.Ordinal()] = p.Decisions[sim.Index{State: s, Action: a}]
	}
	if d.Sum() <= 0 {
		return Deterministic(sim.NoOperation)
	}
	return d
}
