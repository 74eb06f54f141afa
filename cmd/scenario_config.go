package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/factory-sim/factory-sim/sim"
)

// ScenarioFile is the YAML plant description accepted by --config.
// Nil pointer fields mean "not set in YAML" and keep the flag/default value.
// All top-level keys are listed so KnownFields(true) rejects typos.
type ScenarioFile struct {
	MachineCount  *int               `yaml:"machine_count"`
	ShiftLength   *int               `yaml:"shift_length"`
	RepairDelay   *float64           `yaml:"repair_delay"`
	BaseDurations map[string]float64 `yaml:"base_durations"`
	FailureRates  map[string]float64 `yaml:"failure_rates"`
	Products      []sim.ProductType  `yaml:"products"`
}

// LoadScenarioFile reads and strictly parses a YAML scenario file.
func LoadScenarioFile(path string) (*ScenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario config: %w", err)
	}
	var sf ScenarioFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sf); err != nil {
		return nil, fmt.Errorf("parsing scenario config: %w", err)
	}
	return &sf, nil
}

// Apply overlays the file's values on cfg. Stage names in base_durations
// may be kind tags or display names.
func (sf *ScenarioFile) Apply(cfg *sim.Config) error {
	if sf.MachineCount != nil {
		cfg.MachineCount = *sf.MachineCount
	}
	if sf.ShiftLength != nil {
		cfg.ShiftLength = *sf.ShiftLength
	}
	if sf.RepairDelay != nil {
		cfg.RepairDelay = *sf.RepairDelay
	}
	for name, d := range sf.BaseDurations {
		kind, err := sim.ParseStageKind(name)
		if err != nil {
			return fmt.Errorf("base_durations: %w", err)
		}
		cfg.BaseDurations[kind] = d
	}
	if sf.FailureRates != nil {
		cfg.FailureRates = make(map[string]float64, len(sf.FailureRates))
		for name, rate := range sf.FailureRates {
			cfg.FailureRates[name] = rate
		}
	}
	return nil
}

// ProductTypes returns the file's catalog, or the reference catalog when empty.
func (sf *ScenarioFile) ProductTypes() []sim.ProductType {
	if sf == nil || len(sf.Products) == 0 {
		return sim.DefaultProductTypes()
	}
	return sf.Products
}
