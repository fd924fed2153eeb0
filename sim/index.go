package sim

import "fmt"

// The decision-variable space is laid out in mixed radix
// (queue, tu, cpu, action) with radices (Q+1, T+1, C, ActionCount).
// The LP constructor and the policy decoder must both go through
// VariableIndex/DecodeIndex.

// VariableCount is (Q+1)(T+1)C·ActionCount.
func (c Config) VariableCount() int {
	return c.StateCount() * ActionCount
}

func (c Config) radices() (r1, r2 int) {
	r1 = (c.TUNumberOfPackets + 1) * c.CPUNumberOfSections * ActionCount
	r2 = c.CPUNumberOfSections * ActionCount
	return r1, r2
}

// VariableIndex encodes a (state, action) pair. Panics when the state lies
// outside the configured grid.
func (c Config) VariableIndex(ix Index) int {
	if !c.Contains(ix.State) {
		panic(fmt.Sprintf("state %s outside grid Q=%d T=%d C=%d",
			ix.State, c.TaskQueueCapacity, c.TUNumberOfPackets, c.CPUNumberOfSections))
	}
	r1, r2 := c.radices()
	return ix.State.TaskQueueLength*r1 + ix.State.TUState*r2 + ix.State.CPUState*ActionCount + ix.Action.Ordinal()
}

// DecodeIndex is the inverse of VariableIndex.
func (c Config) DecodeIndex(idx int) Index {
	if idx < 0 || idx >= c.VariableCount() {
		panic(fmt.Sprintf("variable index %d out of range [0, %d)", idx, c.VariableCount()))
	}
	r1, r2 := c.radices()
	rest := (idx % r1) % r2
	return Index{
		State: State{
			TaskQueueLength: idx / r1,
			TUState:         (idx % r1) / r2,
			CPUState:        rest / ActionCount,
		},
		Action: ActionFromOrdinal(rest % ActionCount),
	}
}
