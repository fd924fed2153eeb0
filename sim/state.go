package sim

import "fmt"

// State is a snapshot of the user equipment at a tick boundary.
// A unit state of 0 means the unit is idle; a positive value is the
// remaining progress of the task it holds.
type State struct {
	TaskQueueLength int
	TUState         int
	CPUState        int
}

func (s State) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.TaskQueueLength, s.TUState, s.CPUState)
}

// TasksInSystem counts queued tasks plus the tasks held by busy units.
func (s State) TasksInSystem() int {
	n := s.TaskQueueLength
	if s.TUState > 0 {
		n++
	}
	if s.CPUState > 0 {
		n++
	}
	return n
}

// Index addresses one (state, action) decision variable.
type Index struct {
	State  State
	Action Action
}

func (ix Index) String() string {
	return fmt.Sprintf("%s/%s", ix.State, ix.Action)
}
