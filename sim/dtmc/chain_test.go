package dtmc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offload-sim/offload-sim/sim"
)

func smallConfig() sim.Config {
	return sim.Config{
		TaskQueueCapacity:   2,
		TUNumberOfPackets:   1,
		CPUNumberOfSections: 1,
		Alpha:               0.3,
		Beta:                0.6,
	}
}

func st(q, tu, cpu int) sim.State {
	return sim.State{TaskQueueLength: q, TUState: tu, CPUState: cpu}
}

func TestBuild_CoversGrid(t *testing.T) {
	cfg := sim.DefaultConfig()
	ch := NewCreator(cfg).Build()
	assert.Len(t, ch.Adjacency, cfg.StateCount())
	for _, s := range cfg.AllStates() {
		assert.NotEmpty(t, ch.Adjacency[s], "state %s has no edges", s)
	}
}

func TestBuild_ProbabilitiesSumToOne(t *testing.T) {
	configs := []sim.Config{
		smallConfig(),
		sim.DefaultConfig(),
		{TaskQueueCapacity: 4, TUNumberOfPackets: 3, CPUNumberOfSections: 2, Alpha: 0.9, Beta: 0.1},
		{TaskQueueCapacity: 1, TUNumberOfPackets: 1, CPUNumberOfSections: 4, Alpha: 1, Beta: 1},
	}

	for _, cfg := range configs {
		ch := NewCreator(cfg).Build()
		require.NoError(t, ch.Validate(1e-12))

		// Uniform mixture over admissible actions must also be stochastic.
		for s, edges := range ch.Adjacency {
			admissible := sim.AdmissibleActions(s)
			weight := func(a sim.Action) float64 {
				if sim.IsAdmissible(s, a) {
					return 1 / float64(len(admissible))
				}
				return 0
			}
			sum := 0.0
			for _, e := range edges {
				sum += e.Probability(cfg, weight)
			}
			assert.InDelta(t, 1.0, sum, 1e-12, "state %s", s)
		}
	}
}

func TestBuild_NoDuplicateDestinations(t *testing.T) {
	ch := NewCreator(sim.DefaultConfig()).Build()
	for s, edges := range ch.Adjacency {
		seen := make(map[sim.State]bool)
		for _, e := range edges {
			assert.False(t, seen[e.Dest], "state %s lists %s twice", s, e.Dest)
			seen[e.Dest] = true
		}
	}
}

func TestTransitions_FullQueueBothUnits(t *testing.T) {
	cfg := smallConfig()
	c := NewCreator(cfg)
	origin := st(2, 0, 0)

	assert.Equal(t,
		[]sim.Action{sim.NoOperation, sim.AddToTransmissionUnit, sim.AddToCPU, sim.AddToBothUnits},
		sim.AdmissibleActions(origin))

	transitions := c.Transitions(origin, sim.AddToBothUnits)
	require.Len(t, transitions, 2)
	assert.Equal(t, st(0, 1, 0), transitions[0].Dest)
	assert.Equal(t, []Term{{symNoTUCompletion, Tag(sim.AddToBothUnits)}}, transitions[0].Terms)
	assert.Equal(t, st(0, 0, 0), transitions[1].Dest)
	assert.Equal(t, []Term{{symTUCompletion, Tag(sim.AddToBothUnits)}}, transitions[1].Terms)
	for _, tr := range transitions {
		assert.Equal(t, origin, tr.Source)
	}
	assert.Equal(t, "(2,0,0) -> (0,0,0) : [β·AddToBothUnits]", transitions[1].String())
}

func TestTransitions_BranchCounts(t *testing.T) {
	cfg := sim.Config{TaskQueueCapacity: 3, TUNumberOfPackets: 2, CPUNumberOfSections: 2, Alpha: 0.5, Beta: 0.5}
	c := NewCreator(cfg)

	tests := []struct {
		name   string
		state  sim.State
		action sim.Action
		want   int
	}{
		{"headroom, TU idle", st(1, 0, 0), sim.NoOperation, 2},
		{"headroom, TU busy", st(1, 1, 0), sim.NoOperation, 4},
		{"headroom, TU becomes busy", st(1, 0, 0), sim.AddToTransmissionUnit, 4},
		{"full, TU idle", st(3, 0, 1), sim.NoOperation, 1},
		{"full, TU busy", st(3, 2, 0), sim.AddToCPU, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, c.Transitions(tt.state, tt.action), tt.want)
		})
	}
}

func TestTransitions_NoArrivalAtFullQueue(t *testing.T) {
	cfg := sim.DefaultConfig()
	ch := NewCreator(cfg).Build()
	for s, edges := range ch.Adjacency {
		if s.TaskQueueLength != cfg.TaskQueueCapacity {
			continue
		}
		for _, e := range edges {
			for _, term := range e.Terms {
				for _, sym := range term {
					assert.NotEqual(t, Arrival, sym.Kind, "arrival at full queue from %s", s)
					assert.NotEqual(t, NoArrival, sym.Kind, "arrival at full queue from %s", s)
				}
			}
		}
	}
}

func TestTransitions_IllegalActionPanics(t *testing.T) {
	c := NewCreator(smallConfig())
	assert.Panics(t, func() { c.Transitions(st(1, 0, 0), sim.AddToBothUnits) })
	assert.Panics(t, func() { c.Transitions(st(1, 1, 0), sim.AddToTransmissionUnit) })
}

func TestUniqueEdges_ConcatenatesTerms(t *testing.T) {
	cfg := smallConfig()
	c := NewCreator(cfg)
	origin := st(1, 0, 0)

	edges := c.UniqueEdges(origin)
	total := 0
	for _, e := range edges {
		total += len(e.Terms)
	}
	// NoOperation: 2 branches, AddToTransmissionUnit: 4, AddToCPU: 2.
	assert.Equal(t, 8, total)

	// AddToCPU with C=1 finishes in the same tick, so it shares
	// destinations with the idle branches of NoOperation.
	ch := NewCreator(cfg).Build()
	assert.InDelta(t, 1-cfg.Alpha, ch.ProbabilityGiven(origin, st(0, 0, 0), sim.AddToCPU), 1e-12)
	assert.InDelta(t, 1-cfg.Alpha, ch.ProbabilityGiven(origin, st(1, 0, 0), sim.NoOperation), 1e-12)
}

func TestTerm_Coefficient(t *testing.T) {
	cfg := smallConfig()
	term := Term{symArrival, symNoTUCompletion, Tag(sim.AddToCPU)}
	assert.InDelta(t, cfg.Alpha*(1-cfg.Beta), term.Coefficient(cfg), 1e-15)
	assert.Equal(t, sim.AddToCPU, term.Action())
	assert.Panics(t, func() { Term{symArrival}.Action() })
}

func TestEdge_ProbabilityGiven(t *testing.T) {
	cfg := smallConfig()
	e := Edge{Dest: st(0, 0, 0), Terms: []Term{
		{symNoArrival, Tag(sim.NoOperation)},
		{symTUCompletion, Tag(sim.AddToCPU)},
		{symNoArrival, symTUCompletion, Tag(sim.AddToCPU)},
	}}
	assert.InDelta(t, 1-cfg.Alpha, e.ProbabilityGiven(sim.NoOperation, cfg), 1e-15)
	assert.InDelta(t, cfg.Beta+(1-cfg.Alpha)*cfg.Beta, e.ProbabilityGiven(sim.AddToCPU, cfg), 1e-15)
	assert.Equal(t, 0.0, e.ProbabilityGiven(sim.AddToBothUnits, cfg))

	half := func(sim.Action) float64 { return 0.5 }
	want := 0.5*(1-cfg.Alpha) + 0.5*(cfg.Beta+(1-cfg.Alpha)*cfg.Beta)
	assert.False(t, math.IsNaN(e.Probability(cfg, half)))
	assert.InDelta(t, want, e.Probability(cfg, half), 1e-15)
}
