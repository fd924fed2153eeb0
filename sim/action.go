package sim

import "fmt"

// Action is a scheduling decision taken at the start of a tick.
// The ordinal of each action is the innermost axis of the LP variable space.
type Action int

const (
	NoOperation Action = iota
	AddToCPU
	AddToTransmissionUnit
	AddToBothUnits
)

// ActionCount is the number of distinct actions.
const ActionCount = 4

// AllActions lists every action in ordinal order.
var AllActions = [ActionCount]Action{NoOperation, AddToCPU, AddToTransmissionUnit, AddToBothUnits}

// Ordinal returns the LP axis position of the action.
func (a Action) Ordinal() int {
	return int(a)
}

// ActionFromOrdinal returns the action with the given ordinal.
// Panics for ordinals outside [0, ActionCount).
func ActionFromOrdinal(ordinal int) Action {
	if ordinal < 0 || ordinal >= ActionCount {
		panic(fmt.Sprintf("action ordinal %d out of range [0, %d)", ordinal, ActionCount))
	}
	return AllActions[ordinal]
}

func (a Action) String() string {
	switch a {
	case NoOperation:
		return "NoOperation"
	case AddToCPU:
		return "AddToCPU"
	case AddToTransmissionUnit:
		return "AddToTransmissionUnit"
	case AddToBothUnits:
		return "AddToBothUnits"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// AdmissibleActions returns the actions legal in state s, in ordinal order
// except that NoOperation always comes first. Never empty.
func AdmissibleActions(s State) []Action {
	actions := []Action{NoOperation}
	if s.TaskQueueLength >= 1 {
		if s.TUState == 0 {
			actions = append(actions, AddToTransmissionUnit)
		}
		if s.CPUState == 0 {
			actions = append(actions, AddToCPU)
		}
	}
	if s.TaskQueueLength >= 2 && s.TUState == 0 && s.CPUState == 0 {
		actions = append(actions, AddToBothUnits)
	}
	return actions
}

// IsAdmissible reports whether action a is legal in state s.
func IsAdmissible(s State, a Action) bool {
	switch a {
	case NoOperation:
		return true
	case AddToCPU:
		return s.TaskQueueLength >= 1 && s.CPUState == 0
	case AddToTransmissionUnit:
		return s.TaskQueueLength >= 1 && s.TUState == 0
	case AddToBothUnits:
		return s.TaskQueueLength >= 2 && s.TUState == 0 && s.CPUState == 0
	default:
		return false
	}
}
