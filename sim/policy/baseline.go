package policy

import "github.com/offload-sim/offload-sim/sim"

// LocalOnly runs every task on the CPU.
type LocalOnly struct {
	Config sim.Config
}

func (p *LocalOnly) Name() string { return "local-only" }

func (p *LocalOnly) Action(s sim.State) sim.Action {
	if s.CPUState == 0 && s.TaskQueueLength > 0 {
		return sim.AddToCPU
	}
	return sim.NoOperation
}

func (p *LocalOnly) Distribution(s sim.State) Distribution {
	return Deterministic(p.Action(s))
}

// TransmitOnly offloads every task through the TU.
type TransmitOnly struct {
	Config sim.Config
}

func (p *TransmitOnly) Name() string { return "transmit-only" }

func (p *TransmitOnly) Action(s sim.State) sim.Action {
	if s.TUState == 0 && s.TaskQueueLength > 0 {
		return sim.AddToTransmissionUnit
	}
	return sim.NoOperation
}

func (p *TransmitOnly) Distribution(s sim.State) Distribution {
	return Deterministic(p.Action(s))
}

// GreedyLocalFirst keeps both units busy and prefers the CPU when only
// one of them is free.
type GreedyLocalFirst struct {
	Config sim.Config
}

func (p *GreedyLocalFirst) Name() string { return "greedy-local-first" }

func (p *GreedyLocalFirst) Action(s sim.State) sim.Action {
	canRunLocally := s.CPUState == 0
	canTransmit := s.TUState == 0

	switch {
	case canRunLocally && canTransmit && s.TaskQueueLength >= 2:
		return sim.AddToBothUnits
	case canRunLocally && s.TaskQueueLength >= 1:
		return sim.AddToCPU
	case canTransmit && s.TaskQueueLength >= 1:
		return sim.AddToTransmissionUnit
	default:
		return sim.NoOperation
	}
}

func (p *GreedyLocalFirst) Distribution(s sim.State) Distribution {
	return Deterministic(p.Action(s))
}

// GreedyOffloadFirst keeps both units busy and prefers the TU when only
// one of them is free.
type GreedyOffloadFirst struct {
	Config sim.Config
}

func (p *GreedyOffloadFirst) Name() string { return "greedy-offload-first" }

func (p *GreedyOffloadFirst) Action(s sim.State) sim.Action {
	canRunLocally := s.CPUState == 0
	canTransmit := s.TUState == 0

	switch {
	case canRunLocally && canTransmit && s.TaskQueueLength >= 2:
		return sim.AddToBothUnits
	case canTransmit && s.TaskQueueLength >= 1:
		return sim.AddToTransmissionUnit
	case canRunLocally && s.TaskQueueLength >= 1:
		return sim.AddToCPU
	default:
		return sim.NoOperation
	}
}

func (p *GreedyOffloadFirst) Distribution(s sim.State) Distribution {
	return Deterministic(p.Action(s))
}
