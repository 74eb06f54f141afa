package sim

import "fmt"

// ProductType names a product, its setup time and the stages it visits.
type ProductType struct {
	Name      string   `yaml:"name"`
	SetupTime float64  `yaml:"setup_time"`
	Stages    []string `yaml:"stages"`
}

// Validate checks that the product type can be routed.
func (p ProductType) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("product type name must not be empty")
	}
	if p.SetupTime < 0 {
		return fmt.Errorf("product type %q: setup_time must be >= 0, got %f", p.Name, p.SetupTime)
	}
	if len(p.Stages) == 0 {
		return fmt.Errorf("product type %q: at least one stage is required", p.Name)
	}
	for _, st := range p.Stages {
		if _, err := ParseStageKind(st); err != nil {
			return fmt.Errorf("product type %q: %w", p.Name, err)
		}
	}
	return nil
}

// DefaultProductTypes returns the reference product catalog.
func DefaultProductTypes() []ProductType {
	return []ProductType{
		{Name: "C 180", SetupTime: 3.0, Stages: []string{"Raw Material Handling", "Machining", "Assembling", "Inspecting", "Packaging"}},
		{Name: "E 200", SetupTime: 5.0, Stages: []string{"Raw Material Handling", "Machining", "Inspecting", "Packaging"}},
		{Name: "S 600", SetupTime: 4.0, Stages: []string{"Raw Material Handling", "Machining", "Packaging"}},
	}
}
