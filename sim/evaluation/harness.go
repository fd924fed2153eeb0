// Package evaluation measures how often each policy is effective across a
// range of arrival probabilities. Every arrival probability is an
// independent work item evaluated on the sweep pool.
package evaluation

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/offload-sim/offload-sim/sim"
	"github.com/offload-sim/offload-sim/sim/dtmc"
	"github.com/offload-sim/offload-sim/sim/lp"
	"github.com/offload-sim/offload-sim/sim/policy"
	"github.com/offload-sim/offload-sim/sim/simulator"
	"github.com/offload-sim/offload-sim/sim/stochastic"
	"github.com/offload-sim/offload-sim/sim/sweep"
)

// StochasticName labels the optimized policy in results.
const StochasticName = "stochastic"

// PolicyNames lists every evaluated policy in reporting order.
var PolicyNames = append([]string{StochasticName}, policy.BaselineNames...)

// AlphaRange returns start, start+step, ... up to end inclusive.
func AlphaRange(start, end, step float64) ([]float64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("alpha step must be positive, got %f", step)
	}
	if start <= 0 || end > 1 || start > end {
		return nil, fmt.Errorf("alpha range [%f, %f] must lie in (0, 1] and be non-empty", start, end)
	}
	n := int(math.Floor((end-start)/step+1e-9)) + 1
	alphas := make([]float64, n)
	for i := range alphas {
		alphas[i] = start + float64(i)*step
	}
	return alphas, nil
}

// Harness evaluates all policies for each arrival probability.
type Harness struct {
	Base      sim.Config
	Alphas    []float64
	Precision int   // eta sweep precision of the optimizer
	Ticks     int64 // simulated ticks per policy
	Seed      int64
	Workers   int

	// Builder constructs every program of the run. When nil, Run builds
	// one over the chain of Base, which only depends on the capacities.
	Builder stochastic.ProgramBuilder
}

// Outcome is the evaluation of one arrival probability.
type Outcome struct {
	Alpha           float64
	StochasticFound bool
	Reports         map[string]simulator.Report
	Effective       map[string]bool
}

// Result aggregates outcomes in alpha order.
type Result struct {
	Outcomes         []Outcome
	EffectivePercent map[string]float64
}

// Run evaluates every alpha and aggregates effectiveness percentages.
// A missing stochastic policy counts as not effective.
func (h *Harness) Run() (Result, error) {
	if len(h.Alphas) == 0 {
		return Result{}, fmt.Errorf("no alpha values to evaluate")
	}
	builder := h.Builder
	if builder == nil {
		builder = lp.NewBuilder(dtmc.NewCreator(h.Base).Build())
	}
	solver := lp.NewSimplex()
	outcomes, err := sweep.Map(h.Alphas, h.Workers, func(i int, alpha float64) (Outcome, error) {
		logrus.Debugf("evaluating alpha %d of %d (%.4f)", i+1, len(h.Alphas), alpha)
		return h.evaluate(alpha, builder, solver)
	})
	if err != nil {
		return Result{}, err
	}

	percent := make(map[string]float64, len(PolicyNames))
	for _, name := range PolicyNames {
		count := 0
		for _, o := range outcomes {
			if o.Effective[name] {
				count++
			}
		}
		percent[name] = float64(count) / float64(len(outcomes)) * 100
	}
	return Result{Outcomes: outcomes, EffectivePercent: percent}, nil
}

func (h *Harness) evaluate(alpha float64, builder stochastic.ProgramBuilder, solver stochastic.Solver) (Outcome, error) {
	cfg := h.Base.WithAlpha(alpha)
	if err := cfg.Validate(); err != nil {
		return Outcome{}, fmt.Errorf("alpha %.4f: %w", alpha, err)
	}
	s := simulator.New(cfg, h.Seed)
	out := Outcome{
		Alpha:     alpha,
		Reports:   make(map[string]simulator.Report, len(PolicyNames)),
		Effective: make(map[string]bool, len(PolicyNames)),
	}

	// The outer sweep already uses the worker pool.
	finder := &stochastic.Finder{Config: cfg, Builder: builder, Solver: solver, Workers: 1}
	res, err := finder.FindOptimalPolicy(h.Precision)
	if err != nil {
		return Outcome{}, fmt.Errorf("alpha %.4f: %w", alpha, err)
	}
	out.StochasticFound = res.Found()
	if res.Found() {
		r := s.Run(res.Policy, h.Ticks)
		out.Reports[StochasticName] = r
		out.Effective[StochasticName] = r.IsEffective(cfg)
	}

	for _, name := range policy.BaselineNames {
		r := s.Run(policy.NewBaseline(name, cfg), h.Ticks)
		out.Reports[name] = r
		out.Effective[name] = r.IsEffective(cfg)
	}
	return out, nil
}
