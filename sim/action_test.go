package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmissibleActions(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []Action
	}{
		{"empty queue", State{0, 0, 0}, []Action{NoOperation}},
		{"one task, both idle", State{1, 0, 0}, []Action{NoOperation, AddToTransmissionUnit, AddToCPU}},
		{"two tasks, both idle", State{2, 0, 0}, []Action{NoOperation, AddToTransmissionUnit, AddToCPU, AddToBothUnits}},
		{"two tasks, TU busy", State{2, 1, 0}, []Action{NoOperation, AddToCPU}},
		{"two tasks, CPU busy", State{2, 0, 1}, []Action{NoOperation, AddToTransmissionUnit}},
		{"both busy", State{3, 1, 1}, []Action{NoOperation}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdmissibleActions(tt.state)
			assert.Equal(t, tt.want, got)
			for _, a := range got {
				assert.True(t, IsAdmissible(tt.state, a), "%s must be admissible in %s", a, tt.state)
			}
		})
	}
}

func TestAdmissibleActions_NeverEmptyOverGrid(t *testing.T) {
	cfg := DefaultConfig()
	for _, s := range cfg.AllStates() {
		actions := AdmissibleActions(s)
		assert.NotEmpty(t, actions)
		assert.Equal(t, NoOperation, actions[0])
		for _, a := range AllActions {
			assert.Equal(t, contains(actions, a), IsAdmissible(s, a), "state %s action %s", s, a)
		}
	}
}

func TestActionFromOrdinal(t *testing.T) {
	for _, a := range AllActions {
		assert.Equal(t, a, ActionFromOrdinal(a.Ordinal()))
	}
	assert.Panics(t, func() { ActionFromOrdinal(ActionCount) })
	assert.Panics(t, func() { ActionFromOrdinal(-1) })
}

func contains(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
