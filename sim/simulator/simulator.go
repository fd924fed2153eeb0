// Package simulator runs one user equipment tick by tick under a policy.
// Each tick follows the same order as the analytical chain: decide, assign,
// advance the CPU, then draw the arrival and the TU packet completion.
// Arrivals that find the queue full at the start of the tick are dropped.
package simulator

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/offload-sim/offload-sim/sim"
	"github.com/offload-sim/offload-sim/sim/policy"
)

// powerSlack is the relative excess over the power budget still counted
// as effective, absorbing sampling noise of finite runs.
const powerSlack = 0.05

// Report summarizes one simulation run.
type Report struct {
	Policy             string
	Ticks              int64
	Arrivals           int64 // including dropped ones
	Dropped            int64
	CompletedLocal     int64
	CompletedOffloaded int64
	TotalDelay         int64 // ticks between arrival and completion, summed
	Energy             float64
	FinalState         sim.State
}

// Completed is the number of finished tasks.
func (r Report) Completed() int64 {
	return r.CompletedLocal + r.CompletedOffloaded
}

// AverageDelay is the mean arrival-to-completion time in ticks.
func (r Report) AverageDelay() float64 {
	if r.Completed() == 0 {
		return 0
	}
	return float64(r.TotalDelay) / float64(r.Completed())
}

// AveragePower is the energy spent per tick.
func (r Report) AveragePower() float64 {
	if r.Ticks == 0 {
		return 0
	}
	return r.Energy / float64(r.Ticks)
}

// DropRate is the fraction of arrivals that found the queue full.
func (r Report) DropRate() float64 {
	if r.Arrivals == 0 {
		return 0
	}
	return float64(r.Dropped) / float64(r.Arrivals)
}

// IsEffective reports whether the run met the configured drop tolerance
// and power budget. Zero limits are unconstrained.
func (r Report) IsEffective(cfg sim.Config) bool {
	if cfg.DropTolerance > 0 && r.DropRate() > cfg.DropTolerance {
		return false
	}
	if cfg.PowerBudget > 0 && r.AveragePower() > cfg.PowerBudget*(1+powerSlack) {
		return false
	}
	return true
}

// Simulator drives one configured device. Every Run starts from an empty
// device with a fresh RNG derived from the same seed, so different policies
// see the same arrival stream.
type Simulator struct {
	cfg  sim.Config
	tr   sim.Transitions
	seed int64
}

// New returns a Simulator for cfg.
func New(cfg sim.Config, seed int64) *Simulator {
	return &Simulator{cfg: cfg, tr: sim.NewTransitions(cfg), seed: seed}
}

// Run simulates p for the given number of ticks.
// Panics if p chooses an action that is not admissible.
func (s *Simulator) Run(p policy.Policy, ticks int64) Report {
	streams := sim.NewRandomStreams(s.seed)
	arrivals := streams.Stream(sim.StreamArrivals)
	transmission := streams.Stream(sim.StreamTransmission)
	decisions := streams.Stream(sim.StreamDecisions)

	report := Report{Policy: p.Name(), Ticks: ticks}
	var (
		state      sim.State
		queue      []int64 // arrival ticks, FIFO
		cpuArrival int64
		tuArrival  int64
	)

	for tick := int64(0); tick < ticks; tick++ {
		action := policy.Decide(p, state, decisions)
		if !sim.IsAdmissible(state, action) {
			panic(fmt.Sprintf("policy %s chose %s in state %s", p.Name(), action, state))
		}
		originQueue := state.TaskQueueLength

		next := s.tr.Assign(state, action)
		if action == sim.AddToCPU || action == sim.AddToBothUnits {
			cpuArrival, queue = queue[0], queue[1:]
		}
		if action == sim.AddToTransmissionUnit || action == sim.AddToBothUnits {
			tuArrival, queue = queue[0], queue[1:]
		}
		report.Energy += s.cfg.Energy(next)

		if next.CPUState > 0 {
			next = s.tr.AdvanceCPUIfActive(next)
			if next.CPUState == 0 {
				report.CompletedLocal++
				report.TotalDelay += tick - cpuArrival
			}
		}

		arrived := arrivals.Float64() < s.cfg.Alpha
		packetDone := transmission.Float64() < s.cfg.Beta

		if next.TUState > 0 && packetDone {
			next = s.tr.AdvanceTU(next)
			if next.TUState == 0 {
				report.CompletedOffloaded++
				report.TotalDelay += tick - tuArrival
			}
		}
		if arrived {
			report.Arrivals++
			if originQueue < s.cfg.TaskQueueCapacity {
				next = s.tr.AddTask(next)
				queue = append(queue, tick)
			} else {
				report.Dropped++
			}
		}
		state = next
	}

	report.FinalState = state
	logrus.Debugf("simulated %s for %d ticks: completed=%d dropped=%d delay=%.3f power=%.3f",
		p.Name(), ticks, report.Completed(), report.Dropped, report.AverageDelay(), report.AveragePower())
	return report
}
