// Package policy holds the scheduling policies a simulator can drive a
// device with: four deterministic baselines and the stochastic policy
// decoded from the optimal LP solution.
package policy

import (
	"fmt"
	"math/rand"

	"github.com/offload-sim/offload-sim/sim"
)

// Policy chooses the scheduling action for a device state.
type Policy interface {
	Name() string
	// Distribution returns the probability of each action in state.
	// Only admissible actions carry mass and the masses sum to 1.
	Distribution(state sim.State) Distribution
}

// Distribution holds one probability per action, indexed by ordinal.
type Distribution [sim.ActionCount]float64

// Deterministic puts all mass on a.
func Deterministic(a sim.Action) Distribution {
	var d Distribution
	d[a.Ordinal()] = 1
	return d
}

// Sum returns the total mass.
func (d Distribution) Sum() float64 {
	s := 0.0
	for _, p := range d {
		s += p
	}
	return s
}

// Sample maps u in [0, 1) to an action by inverse CDF in ordinal order.
// Rounding slack at the top end falls on the last action with mass.
func (d Distribution) Sample(u float64) sim.Action {
	last := sim.NoOperation
	acc := 0.0
	for i, p := range d {
		if p <= 0 {
			continue
		}
		last = sim.ActionFromOrdinal(i)
		acc += p
		if u < acc {
			return last
		}
	}
	return last
}

// single returns the only action with mass, if there is exactly one.
func (d Distribution) single() (sim.Action, bool) {
	found := -1
	for i, p := range d {
		if p > 0 {
			if found >= 0 {
				return 0, false
			}
			found = i
		}
	}
	if found < 0 {
		return sim.NoOperation, true
	}
	return sim.ActionFromOrdinal(found), true
}

// Decide draws an action for state. rng is only consumed when the policy
// is not deterministic in that state.
func Decide(p Policy, state sim.State, rng *rand.Rand) sim.Action {
	d := p.Distribution(state)
	if a, ok := d.single(); ok {
		return a
	}
	return d.Sample(rng.Float64())
}

// ValidBaselines is the set of recognized baseline names.
var ValidBaselines = map[string]bool{
	"local-only":           true,
	"transmit-only":        true,
	"greedy-local-first":   true,
	"greedy-offload-first": true,
}

// BaselineNames lists the baselines in reporting order.
var BaselineNames = []string{"local-only", "transmit-only", "greedy-local-first", "greedy-offload-first"}

// NewBaseline creates a baseline policy by name.
// Valid names: "local-only", "transmit-only", "greedy-local-first", "greedy-offload-first".
func NewBaseline(name string, cfg sim.Config) Policy {
	switch name {
	case "local-only":
		return &LocalOnly{Config: cfg}
	case "transmit-only":
		return &TransmitOnly{Config: cfg}
	case "greedy-local-first":
		return &GreedyLocalFirst{Config: cfg}
	case "greedy-offload-first":
		return &GreedyOffloadFirst{Config: cfg}
	default:
		panic(fmt.Sprintf("unknown baseline policy %q; valid policies: %v", name, BaselineNames))
	}
}
