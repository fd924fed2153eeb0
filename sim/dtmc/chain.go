// Package dtmc builds the exact symbolic Markov chain of one user equipment:
// every reachable next state under every admissible action, with the
// transition probabilities kept as products of qualitative symbols so the
// same chain can be evaluated for many parameter values.
package dtmc

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/offload-sim/offload-sim/sim"
)

// Chain is the adjacency model over the full state grid. Immutable once built.
type Chain struct {
	Config    sim.Config
	Adjacency map[sim.State][]Edge
}

// Transition is one elementary branch from Source to Dest.
type Transition struct {
	Source sim.State
	Dest   sim.State
	Terms  []Term
}

func (t Transition) String() string {
	return fmt.Sprintf("%s -> %s : %v", t.Source, t.Dest, t.Terms)
}

func (t Transition) toEdge() Edge {
	return Edge{Dest: t.Dest, Terms: t.Terms}
}

// Creator enumerates the transitions of a configured device.
type Creator struct {
	cfg sim.Config
	tr  sim.Transitions
}

// NewCreator returns a Creator for cfg.
func NewCreator(cfg sim.Config) *Creator {
	return &Creator{cfg: cfg, tr: sim.NewTransitions(cfg)}
}

// Build generates the edge list of every state in the grid.
func (c *Creator) Build() *Chain {
	states := c.cfg.AllStates()
	logrus.Debugf("building chain over %d states", len(states))
	adjacency := make(map[sim.State][]Edge, len(states))
	for _, s := range states {
		adjacency[s] = c.UniqueEdges(s)
	}
	return &Chain{Config: c.cfg, Adjacency: adjacency}
}

// UniqueEdges merges the transitions of every admissible action of s by
// destination, concatenating their terms. Edge order follows the first
// occurrence of each destination.
func (c *Creator) UniqueEdges(s sim.State) []Edge {
	var edges []Edge
	position := make(map[sim.State]int)
	for _, a := range sim.AdmissibleActions(s) {
		for _, t := range c.Transitions(s, a) {
			if i, ok := position[t.Dest]; ok {
				edges[i].Terms = append(edges[i].Terms, t.Terms...)
				continue
			}
			position[t.Dest] = len(edges)
			edges = append(edges, t.toEdge())
		}
	}
	return edges
}

// Transitions enumerates the elementary branches of taking action a in s.
// Arrivals are only modeled when s has queue headroom; TU completions only
// when the TU is busy after the action.
func (c *Creator) Transitions(s sim.State, a sim.Action) []Transition {
	if !sim.IsAdmissible(s, a) {
		panic(fmt.Sprintf("action %s not admissible in state %s", a, s))
	}
	next := c.tr.AdvanceCPUIfActive(c.tr.Assign(s, a))
	tag := Tag(a)

	type branch struct {
		dest  sim.State
		terms Term
	}
	var branches []branch
	if s.TaskQueueLength < c.cfg.TaskQueueCapacity {
		if next.TUState == 0 {
			branches = []branch{
				{next, Term{symNoArrival, tag}},
				{c.tr.AddTask(next), Term{symArrival, tag}},
			}
		} else {
			advanced := c.tr.AdvanceTU(next)
			branches = []branch{
				{next, Term{symNoArrival, symNoTUCompletion, tag}},
				{c.tr.AddTask(next), Term{symArrival, symNoTUCompletion, tag}},
				{advanced, Term{symNoArrival, symTUCompletion, tag}},
				{c.tr.AddTask(advanced), Term{symArrival, symTUCompletion, tag}},
			}
		}
	} else {
		if next.TUState == 0 {
			branches = []branch{{next, Term{tag}}}
		} else {
			branches = []branch{
				{next, Term{symNoTUCompletion, tag}},
				{c.tr.AdvanceTU(next), Term{symTUCompletion, tag}},
			}
		}
	}

	transitions := make([]Transition, len(branches))
	for i, b := range branches {
		transitions[i] = Transition{Source: s, Dest: b.dest, Terms: []Term{b.terms}}
	}
	return transitions
}

// ProbabilityGiven returns P(dest | s, a).
func (ch *Chain) ProbabilityGiven(s, dest sim.State, a sim.Action) float64 {
	for _, e := range ch.Adjacency[s] {
		if e.Dest == dest {
			return e.ProbabilityGiven(a, ch.Config)
		}
	}
	return 0
}

// EdgeCount is the total number of edges in the chain.
func (ch *Chain) EdgeCount() int {
	n := 0
	for _, edges := range ch.Adjacency {
		n += len(edges)
	}
	return n
}

// Validate checks that, for every state and every admissible action, the
// outgoing probabilities sum to 1 within tolerance and every destination
// lies on the grid.
func (ch *Chain) Validate(tolerance float64) error {
	for _, s := range ch.Config.AllStates() {
		edges, ok := ch.Adjacency[s]
		if !ok {
			return fmt.Errorf("state %s missing from chain", s)
		}
		for _, e := range edges {
			if !ch.Config.Contains(e.Dest) {
				return fmt.Errorf("edge %s -> %s leaves the grid", s, e.Dest)
			}
		}
		for _, a := range sim.AdmissibleActions(s) {
			sum := 0.0
			for _, e := range edges {
				sum += e.ProbabilityGiven(a, ch.Config)
			}
			if math.Abs(sum-1) > tolerance {
				return fmt.Errorf("state %s action %s: outgoing probability %.12f, want 1", s, a, sum)
			}
		}
	}
	return nil
}
