package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one user equipment and its environment.
//
// The CPU grid spans [0, CPUNumberOfSections-1]: a task assigned to the CPU
// starts with CPUNumberOfSections remaining sections and always advances once
// in the tick of its assignment. The TU grid spans [0, TUNumberOfPackets].
type Config struct {
	TaskQueueCapacity   int     `yaml:"task_queue_capacity"`    // Q, max queued tasks
	TUNumberOfPackets   int     `yaml:"tu_number_of_packets"`   // T, packets per offloaded task
	CPUNumberOfSections int     `yaml:"cpu_number_of_sections"` // C, sections per local task
	Alpha               float64 `yaml:"alpha"`                  // task arrival probability per tick
	Beta                float64 `yaml:"beta"`                   // packet completion probability per tick
	Eta                 float64 `yaml:"eta"`                    // delay/energy trade-off weight
	LocalPower          float64 `yaml:"local_power"`            // energy per tick of CPU activity
	TransmitPower       float64 `yaml:"transmit_power"`         // energy per tick of TU activity
	PowerBudget         float64 `yaml:"power_budget"`           // max average power (0 = unconstrained)
	DropTolerance       float64 `yaml:"drop_tolerance"`         // max dropped-arrival fraction (0 = unconstrained)
}

// DefaultConfig returns a small, valid configuration.
func DefaultConfig() Config {
	return Config{
		TaskQueueCapacity:   5,
		TUNumberOfPackets:   2,
		CPUNumberOfSections: 3,
		Alpha:               0.2,
		Beta:                0.6,
		LocalPower:          1.0,
		TransmitPower:       0.5,
		DropTolerance:       0.05,
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks capacities and probability ranges.
func (c Config) Validate() error {
	if c.TaskQueueCapacity < 1 {
		return fmt.Errorf("task_queue_capacity must be >= 1, got %d", c.TaskQueueCapacity)
	}
	if c.TUNumberOfPackets < 1 {
		return fmt.Errorf("tu_number_of_packets must be >= 1, got %d", c.TUNumberOfPackets)
	}
	if c.CPUNumberOfSections < 1 {
		return fmt.Errorf("cpu_number_of_sections must be >= 1, got %d", c.CPUNumberOfSections)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1], got %f", c.Alpha)
	}
	if c.Beta <= 0 || c.Beta > 1 {
		return fmt.Errorf("beta must be in (0, 1], got %f", c.Beta)
	}
	if c.Eta < 0 || c.Eta > 1 {
		return fmt.Errorf("eta must be in [0, 1], got %f", c.Eta)
	}
	if c.LocalPower < 0 || c.TransmitPower < 0 {
		return fmt.Errorf("powers must be non-negative, got local=%f transmit=%f", c.LocalPower, c.TransmitPower)
	}
	if c.PowerBudget < 0 {
		return fmt.Errorf("power_budget must be non-negative, got %f", c.PowerBudget)
	}
	if c.DropTolerance < 0 || c.DropTolerance > 1 {
		return fmt.Errorf("drop_tolerance must be in [0, 1], got %f", c.DropTolerance)
	}
	return nil
}

// WithEta returns a copy of c with the trade-off weight replaced.
func (c Config) WithEta(eta float64) Config {
	c.Eta = eta
	return c
}

// WithAlpha returns a copy of c with the arrival probability replaced.
func (c Config) WithAlpha(alpha float64) Config {
	c.Alpha = alpha
	return c
}

// StateCount is |S| = (Q+1)(T+1)C.
func (c Config) StateCount() int {
	return (c.TaskQueueCapacity + 1) * (c.TUNumberOfPackets + 1) * c.CPUNumberOfSections
}

// AllStates enumerates the state grid in decision-variable order:
// queue length outermost, CPU state innermost.
func (c Config) AllStates() []State {
	states := make([]State, 0, c.StateCount())
	for q := 0; q <= c.TaskQueueCapacity; q++ {
		for tu := 0; tu <= c.TUNumberOfPackets; tu++ {
			for cpu := 0; cpu < c.CPUNumberOfSections; cpu++ {
				states = append(states, State{TaskQueueLength: q, TUState: tu, CPUState: cpu})
			}
		}
	}
	return states
}

// Contains reports whether s lies inside the configured grid.
func (c Config) Contains(s State) bool {
	return s.TaskQueueLength >= 0 && s.TaskQueueLength <= c.TaskQueueCapacity &&
		s.TUState >= 0 && s.TUState <= c.TUNumberOfPackets &&
		s.CPUState >= 0 && s.CPUState < c.CPUNumberOfSections
}

// Energy returns the energy spent in one tick by a device whose units are
// in the given post-assignment state.
func (c Config) Energy(afterAction State) float64 {
	e := 0.0
	if afterAction.CPUState > 0 {
		e += c.LocalPower
	}
	if afterAction.TUState > 0 {
		e += c.TransmitPower
	}
	return e
}
