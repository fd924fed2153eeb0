// Package lp turns the symbolic chain of a device into the average-cost
// linear program over stationary (state, action) frequencies, and solves it.
//
// Variable x(s,a) is the long-run fraction of ticks spent in state s taking
// action a. Variables are addressed with sim.Config.VariableIndex; pairs that
// are not admissible get no column and are fixed at 0.
//
// Rows are the normalization Σx = 1, one balance row per state, and, when
// configured, a power-budget row and a dropped-arrival row, each closed by a
// slack column. Arrivals are dropped exactly when the queue is full, so the
// drop rate is the stationary probability of the full-queue states.
package lp

import (
	"fmt"

	"github.com/offload-sim/offload-sim/sim"
	"github.com/offload-sim/offload-sim/sim/dtmc"
	"github.com/offload-sim/offload-sim/sim/policy"
)

// SlackColumn marks a column that is not a decision variable.
const SlackColumn = -1

// Program is a linear program in standard form:
//
//	minimize   Objective·x
//	subject to Rows·x = RHS, x >= 0
type Program struct {
	Eta          float64
	NumVariables int
	Columns      []int       // decision-variable index per column, or SlackColumn
	Objective    []float64   // per column
	Delay        []float64   // per column, delay contribution of the column
	Energy       []float64   // per column, energy spent per tick
	Rows         [][]float64 // dense, len(Columns) wide
	RHS          []float64

	// StartBasis lists the columns of the simplex starting basis: the
	// greedy-local-first action of every state and every slack.
	StartBasis []int
}

// Builder constructs programs from one chain. The chain only depends on the
// capacities, so one Builder serves every (alpha, beta, eta) of a sweep.
type Builder struct {
	chain *dtmc.Chain
}

// NewBuilder returns a Builder over chain.
func NewBuilder(chain *dtmc.Chain) *Builder {
	return &Builder{chain: chain}
}

// Build constructs the program for cfg. cfg must share the chain's capacities.
func (b *Builder) Build(cfg sim.Config) (*Program, error) {
	base := b.chain.Config
	if cfg.TaskQueueCapacity != base.TaskQueueCapacity ||
		cfg.TUNumberOfPackets != base.TUNumberOfPackets ||
		cfg.CPUNumberOfSections != base.CPUNumberOfSections {
		return nil, fmt.Errorf("config capacities (%d,%d,%d) differ from chain capacities (%d,%d,%d)",
			cfg.TaskQueueCapacity, cfg.TUNumberOfPackets, cfg.CPUNumberOfSections,
			base.TaskQueueCapacity, base.TUNumberOfPackets, base.CPUNumberOfSections)
	}
	if cfg.Alpha <= 0 {
		return nil, fmt.Errorf("alpha must be positive, got %f", cfg.Alpha)
	}

	states := cfg.AllStates()
	row := make(map[sim.State]int, len(states))
	for i, s := range states {
		row[s] = i + 1 // row 0 is the normalization row
	}
	tr := sim.NewTransitions(cfg)

	p := &Program{Eta: cfg.Eta, NumVariables: cfg.VariableCount()}
	greedy := &policy.GreedyLocalFirst{Config: cfg}
	for _, s := range states {
		start := greedy.Action(s)
		for _, a := range sim.AdmissibleActions(s) {
			if a == start {
				p.StartBasis = append(p.StartBasis, len(p.Columns))
			}
			p.Columns = append(p.Columns, cfg.VariableIndex(sim.Index{State: s, Action: a}))
			delay := float64(s.TasksInSystem()) / cfg.Alpha
			energy := cfg.Energy(tr.Assign(s, a))
			p.Delay = append(p.Delay, delay)
			p.Energy = append(p.Energy, energy)
			p.Objective = append(p.Objective, delay+cfg.Eta*energy)
		}
	}
	// Optional inequality rows, each closed by its own slack column.
	type limit struct {
		coef  func(col int, s sim.State) float64
		bound float64
	}
	var limits []limit
	if cfg.PowerBudget > 0 {
		limits = append(limits, limit{
			coef:  func(col int, _ sim.State) float64 { return p.Energy[col] },
			bound: cfg.PowerBudget,
		})
	}
	if cfg.DropTolerance > 0 && cfg.DropTolerance < 1 {
		limits = append(limits, limit{
			coef: func(_ int, s sim.State) float64 {
				if s.TaskQueueLength == cfg.TaskQueueCapacity {
					return 1
				}
				return 0
			},
			bound: cfg.DropTolerance,
		})
	}
	decisionColumns := len(p.Columns)
	for range limits {
		p.StartBasis = append(p.StartBasis, len(p.Columns))
		p.Columns = append(p.Columns, SlackColumn)
		p.Delay = append(p.Delay, 0)
		p.Energy = append(p.Energy, 0)
		p.Objective = append(p.Objective, 0)
	}

	width := len(p.Columns)
	limitRow := len(states) + 1
	p.Rows = make([][]float64, limitRow+len(limits))
	for i := range p.Rows {
		p.Rows[i] = make([]float64, width)
	}
	p.RHS = make([]float64, len(p.Rows))
	p.RHS[0] = 1

	col := 0
	for _, s := range states {
		edges := b.chain.Adjacency[s]
		for _, a := range sim.AdmissibleActions(s) {
			p.Rows[0][col] = 1
			p.Rows[row[s]][col] += 1
			for _, e := range edges {
				if prob := e.ProbabilityGiven(a, cfg); prob != 0 {
					p.Rows[row[e.Dest]][col] -= prob
				}
			}
			for k, l := range limits {
				p.Rows[limitRow+k][col] = l.coef(col, s)
			}
			col++
		}
	}
	for k, l := range limits {
		p.Rows[limitRow+k][decisionColumns+k] = 1
		p.RHS[limitRow+k] = l.bound
	}
	return p, nil
}

// Expand scatters per-column values into the full decision-variable vector.
func (p *Program) Expand(columnValues []float64) []float64 {
	values := make([]float64, p.NumVariables)
	for j, v := range p.Columns {
		if v == SlackColumn {
			continue
		}
		if columnValues[j] > 0 {
			values[v] = columnValues[j]
		}
	}
	return values
}
