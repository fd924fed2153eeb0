package sim

import "fmt"

// Transitions applies elementary physical effects to states of one
// configured device. Every method is pure; illegal applications panic
// since they can only come from a bug in action enumeration.
type Transitions struct {
	cfg Config
}

// NewTransitions binds the primitives to a configuration.
func NewTransitions(cfg Config) Transitions {
	return Transitions{cfg: cfg}
}

// AddToCPU moves the head-of-queue task onto the idle CPU.
func (t Transitions) AddToCPU(s State) State {
	if s.TaskQueueLength < 1 || s.CPUState != 0 {
		panic(fmt.Sprintf("AddToCPU illegal in state %s", s))
	}
	s.TaskQueueLength--
	s.CPUState = t.cfg.CPUNumberOfSections
	return s
}

// AddToTransmissionUnit moves the head-of-queue task onto the idle TU.
func (t Transitions) AddToTransmissionUnit(s State) State {
	if s.TaskQueueLength < 1 || s.TUState != 0 {
		panic(fmt.Sprintf("AddToTransmissionUnit illegal in state %s", s))
	}
	s.TaskQueueLength--
	s.TUState = t.cfg.TUNumberOfPackets
	return s
}

// AdvanceCPUIfActive executes one CPU section when the CPU is busy.
func (t Transitions) AdvanceCPUIfActive(s State) State {
	if s.CPUState > 0 {
		s.CPUState--
	}
	return s
}

// AdvanceTU completes one packet of the task held by the TU.
func (t Transitions) AdvanceTU(s State) State {
	if s.TUState <= 0 {
		panic(fmt.Sprintf("AdvanceTU illegal in state %s", s))
	}
	s.TUState--
	return s
}

// AddTask enqueues one arriving task.
func (t Transitions) AddTask(s State) State {
	if s.TaskQueueLength >= t.cfg.TaskQueueCapacity {
		panic(fmt.Sprintf("AddTask illegal in state %s: queue capacity %d", s, t.cfg.TaskQueueCapacity))
	}
	s.TaskQueueLength++
	return s
}

// Assign applies the resource-assignment effect of action a.
// AddToBothUnits assigns the CPU first, then the TU.
func (t Transitions) Assign(s State, a Action) State {
	switch a {
	case NoOperation:
		return s
	case AddToCPU:
		return t.AddToCPU(s)
	case AddToTransmissionUnit:
		return t.AddToTransmissionUnit(s)
	case AddToBothUnits:
		if s.TaskQueueLength < 2 {
			panic(fmt.Sprintf("AddToBothUnits illegal in state %s: needs 2 queued tasks", s))
		}
		return t.AddToTransmissionUnit(t.AddToCPU(s))
	default:
		panic(fmt.Sprintf("unknown action %d", int(a)))
	}
}
