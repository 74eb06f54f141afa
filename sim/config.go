package sim

import (
	"fmt"
	"math"
)

// Default values used when no scenario file overrides them.
const (
	DefaultMachineCount = 6
	DefaultShiftLength  = 8
	DefaultRepairDelay  = 1.0
)

// ConfigError reports an invalid configuration value. Fatal, never retried.
type ConfigError struct {
	Field string
	Value any
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s=%v: %s", e.Field, e.Value, e.Msg)
}

// Config groups every knob the core looks up during a run. It is built
// once and passed explicitly to the pipeline.
type Config struct {
	MachineCount  int                   // machines per stage, must be > 0
	ShiftLength   int                   // shift length in hours, must be > 0
	BaseDurations map[StageKind]float64 // base processing time per stage kind
	FailureRates  map[string]float64    // per-machine failure probability, missing = 0
	RepairDelay   float64               // time from failure to repair
}

// DefaultConfig returns the reference plant configuration.
func DefaultConfig() Config {
	return Config{
		MachineCount: DefaultMachineCount,
		ShiftLength:  DefaultShiftLength,
		BaseDurations: map[StageKind]float64{
			RawMaterialHandling: 2.0,
			Machining:           5.0,
			Assembling:          3.0,
			Inspecting:          1.0,
			Packaging:           2.0,
		},
		FailureRates: map[string]float64{
			"Machine1": 0.05,
			"Machine2": 0.10,
		},
		RepairDelay: DefaultRepairDelay,
	}
}

// Validate checks ranges. Returns a *ConfigError on the first bad field.
func (c Config) Validate() error {
	if c.MachineCount <= 0 {
		return &ConfigError{Field: "machine_count", Value: c.MachineCount, Msg: "must be > 0"}
	}
	if c.ShiftLength <= 0 {
		return &ConfigError{Field: "shift_length", Value: c.ShiftLength, Msg: "must be > 0"}
	}
	if c.RepairDelay < 0 || math.IsNaN(c.RepairDelay) {
		return &ConfigError{Field: "repair_delay", Value: c.RepairDelay, Msg: "must be >= 0"}
	}
	for _, kind := range AllStageKinds() {
		if d := c.BaseDurations[kind]; d < 0 || math.IsNaN(d) {
			return &ConfigError{Field: "base_durations." + kind.String(), Value: d, Msg: "must be >= 0"}
		}
	}
	for name, rate := range c.FailureRates {
		if rate < 0 || rate > 1 || math.IsNaN(rate) {
			return &ConfigError{Field: "failure_rates." + name, Value: rate, Msg: "must be within [0, 1]"}
		}
	}
	return nil
}

// BaseDuration returns the unadjusted processing time for a stage kind.
func (c Config) BaseDuration(kind StageKind) float64 {
	return c.BaseDurations[kind]
}

// AdjustedDuration returns baseDuration / (machineCount * shiftLength).
func (c Config) AdjustedDuration(kind StageKind) (float64, error) {
	if c.MachineCount <= 0 {
		return 0, &ConfigError{Field: "machine_count", Value: c.MachineCount, Msg: "must be > 0"}
	}
	if c.ShiftLength <= 0 {
		return 0, &ConfigError{Field: "shift_length", Value: c.ShiftLength, Msg: "must be > 0"}
	}
	return c.BaseDuration(kind) / float64(c.MachineCount*c.ShiftLength), nil
}

// FailureRate returns the failure probability of a machine. Unlisted machines never fail.
func (c Config) FailureRate(machine string) float64 {
	return c.FailureRates[machine]
}
