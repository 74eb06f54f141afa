package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	sim "github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/report"
)

// Scenario names accepted by --scenario.
const (
	ScenarioSingle   = "single"
	ScenarioMulti    = "multi"
	ScenarioAdjusted = "adjusted"
	ScenarioAll      = "all"
)

var validScenarios = map[string]bool{
	ScenarioSingle: true, ScenarioMulti: true, ScenarioAdjusted: true, ScenarioAll: true,
}

// RunOptions groups everything a scenario run needs. Built once from flags.
type RunOptions struct {
	Scenario         string
	Config           sim.Config
	Products         []sim.ProductType
	Seed             int64
	AdjustedMachines int
	AdjustedShift    int
	HaltOnFailure    bool
	Horizon          float64
	MaterialName     string
	Decommissioned   []string // machines out of service in every scenario
}

// scenarioStep is one titled run printed with its own report.
type scenarioStep struct {
	title string
	cfg   sim.Config
	run   func(ctx context.Context, p *sim.Pipeline) (*sim.RunResult, error)
}

// runScenarios executes the selected scenarios in order and writes a report
// for each one to w.
func runScenarios(ctx context.Context, opts RunOptions, w io.Writer) error {
	if !validScenarios[opts.Scenario] {
		return fmt.Errorf("unknown scenario %q (valid: single, multi, adjusted, all)", opts.Scenario)
	}
	if err := opts.Config.Validate(); err != nil {
		return err
	}
	if opts.Horizon <= 0 {
		opts.Horizon = math.Inf(1)
	}
	if opts.MaterialName == "" {
		opts.MaterialName = "Single Material 1"
	}

	single := scenarioStep{
		title: "Single Product",
		cfg:   opts.Config,
		run: func(ctx context.Context, p *sim.Pipeline) (*sim.RunResult, error) {
			return p.RunSingle(ctx, opts.MaterialName)
		},
	}
	multi := scenarioStep{
		title: "Multi Product",
		cfg:   opts.Config,
		run: func(ctx context.Context, p *sim.Pipeline) (*sim.RunResult, error) {
			return p.RunProducts(ctx, opts.Products)
		},
	}
	adjustedCfg := cloneConfig(opts.Config)
	adjustedCfg.MachineCount = opts.AdjustedMachines
	adjustedCfg.ShiftLength = opts.AdjustedShift
	adjusted := scenarioStep{
		title: fmt.Sprintf("Adjusting variables (machines=%d, shift=%d)", opts.AdjustedMachines, opts.AdjustedShift),
		cfg:   adjustedCfg,
		run:   multi.run,
	}

	var steps []scenarioStep
	switch opts.Scenario {
	case ScenarioSingle:
		steps = []scenarioStep{single}
	case ScenarioMulti:
		steps = []scenarioStep{multi}
	case ScenarioAdjusted:
		steps = []scenarioStep{adjusted}
	case ScenarioAll:
		steps = []scenarioStep{single, multi, adjusted}
	}

	rng := sim.NewPartitionedRNG(opts.Seed)
	for _, step := range steps {
		simOpts := []sim.PipelineOption{sim.WithHorizon(opts.Horizon)}
		if opts.HaltOnFailure {
			simOpts = append(simOpts, sim.WithHaltOnFailure())
		}
		rec := report.NewRecorder()
		p, err := sim.NewPipeline(step.cfg, sim.NewSimulationClock(), rng.ForSubsystem(sim.SubsystemFailures), rec, simOpts...)
		if err != nil {
			return fmt.Errorf("%s: %w", step.title, err)
		}
		for _, name := range opts.Decommissioned {
			if _, err := p.Decommission(name); err != nil {
				return fmt.Errorf("%s: %w", step.title, err)
			}
		}

		fmt.Fprintln(w, strings.Repeat("-", 45))
		fmt.Fprintln(w, step.title)
		fmt.Fprintln(w, strings.Repeat("-", 45))

		res, err := step.run(ctx, p)
		if err != nil {
			return fmt.Errorf("%s: %w", step.title, err)
		}
		logrus.Infof("%s: run %s finished %d/%d materials in %d events", step.title, res.RunID, res.Finished, res.Materials, res.Events)
		fmt.Fprintf(w, "Run ID                : %s\n", res.RunID)
		fmt.Fprintf(w, "Materials             : %d routed, %d finished, %d halted\n", res.Materials, res.Finished, res.Halted)
		report.Summarize(rec.Records, res.Elapsed).Print(w)
	}
	return nil
}

func cloneConfig(c sim.Config) sim.Config {
	out := c
	out.BaseDurations = make(map[sim.StageKind]float64, len(c.BaseDurations))
	for k, v := range c.BaseDurations {
		out.BaseDurations[k] = v
	}
	out.FailureRates = make(map[string]float64, len(c.FailureRates))
	for k, v := range c.FailureRates {
		out.FailureRates[k] = v
	}
	return out
}
