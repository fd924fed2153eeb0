// Package stochastic searches the delay/energy trade-off weight for the
// best stationary randomized scheduling policy of a device.
package stochastic

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/offload-sim/offload-sim/sim"
	"github.com/offload-sim/offload-sim/sim/dtmc"
	"github.com/offload-sim/offload-sim/sim/lp"
	"github.com/offload-sim/offload-sim/sim/policy"
	"github.com/offload-sim/offload-sim/sim/sweep"
)

var (
	// ErrVariableCountMismatch means the solver returned a vector that does
	// not follow the decision-variable layout of the configuration.
	ErrVariableCountMismatch = errors.New("decision variable count mismatch")

	// ErrInvalidPrecision is returned for negative sweep precisions.
	ErrInvalidPrecision = errors.New("precision must be non-negative")
)

// ProgramBuilder constructs the linear program of a configuration.
type ProgramBuilder interface {
	Build(cfg sim.Config) (*lp.Program, error)
}

// Solver solves a linear program.
type Solver interface {
	Solve(p *lp.Program) (lp.Solution, error)
}

// Finder sweeps eta over [0, 1] and keeps the program with the smallest
// objective.
type Finder struct {
	Config  sim.Config
	Builder ProgramBuilder
	Solver  Solver
	Workers int // concurrent solves, capped at sweep.MaxWorkers
}

// NewFinder returns a Finder using the exact chain of cfg and the simplex solver.
func NewFinder(cfg sim.Config) *Finder {
	return &Finder{
		Config:  cfg,
		Builder: lp.NewBuilder(dtmc.NewCreator(cfg).Build()),
		Solver:  lp.NewSimplex(),
		Workers: sweep.MaxWorkers,
	}
}

// Result is the outcome of one search. A Result without a policy means
// no eta admitted a feasible program; callers fall back to baselines.
type Result struct {
	Policy *policy.Stochastic
}

// Found reports whether an effective policy exists.
func (r Result) Found() bool {
	return r.Policy != nil
}

// Etas returns the precision+1 sweep points i/precision. Precision 0
// yields the single point 0.
func Etas(precision int) []float64 {
	if precision == 0 {
		return []float64{0}
	}
	etas := make([]float64, precision+1)
	for i := range etas {
		etas[i] = float64(i) / float64(precision)
	}
	return etas
}

type candidate struct {
	solution lp.Solution
	feasible bool
}

// FindOptimalPolicy solves one program per eta and decodes the best one.
// Ties keep the smallest eta. Infeasible programs are skipped; any other
// build or solve failure aborts the search.
func (f *Finder) FindOptimalPolicy(precision int) (Result, error) {
	if precision < 0 {
		return Result{}, fmt.Errorf("%w, got %d", ErrInvalidPrecision, precision)
	}
	etas := Etas(precision)
	expected := f.Config.VariableCount()

	candidates, err := sweep.Map(etas, f.Workers, func(i int, eta float64) (candidate, error) {
		logrus.Debugf("cycle %d of %d (eta=%.4f)", i, precision, eta)
		program, err := f.Builder.Build(f.Config.WithEta(eta))
		if err != nil {
			return candidate{}, fmt.Errorf("building program at eta=%g: %w", eta, err)
		}
		solution, err := f.Solver.Solve(program)
		if lp.IsInfeasible(err) {
			logrus.Debugf("eta=%.4f infeasible: %v", eta, err)
			return candidate{}, nil
		}
		if err != nil {
			return candidate{}, err
		}
		if len(solution.Values) != expected {
			return candidate{}, fmt.Errorf("%w: solver returned %d values, want %d",
				ErrVariableCountMismatch, len(solution.Values), expected)
		}
		return candidate{solution: solution, feasible: true}, nil
	})
	if err != nil {
		return Result{}, err
	}

	best := -1
	for i, c := range candidates {
		if !c.feasible {
			continue
		}
		if best < 0 || c.solution.Objective < candidates[best].solution.Objective {
			best = i
		}
	}
	if best < 0 {
		logrus.Infof("no effective policy found over %d eta values", len(etas))
		return Result{}, nil
	}

	winner := candidates[best].solution
	decisions, err := Decode(f.Config, winner.Values)
	if err != nil {
		return Result{}, err
	}
	logrus.Infof("optimal eta=%.4f objective=%.6f power=%.6f", etas[best], winner.Objective, winner.AveragePower)
	return Result{Policy: &policy.Stochastic{
		Eta:          etas[best],
		Objective:    winner.Objective,
		AverageDelay: winner.AverageDelay,
		AveragePower: winner.AveragePower,
		Decisions:    decisions,
	}}, nil
}
