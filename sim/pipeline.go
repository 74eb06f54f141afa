package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/factory-sim/factory-sim/sim/report"
)

// Reference resource pool attached to every stage.
var (
	DefaultMachineNames  = []string{"Machine1", "Machine2"}
	DefaultOperatorNames = []string{"Operator1", "Operator2"}
)

// RunResult summarizes one orchestrated run.
type RunResult struct {
	RunID     string
	Materials int     // materials routed
	Finished  int     // materials that reached the end of their route
	Halted    int     // materials stopped by a deferral (HaltOnFailure only)
	Events    int     // events executed while draining
	Elapsed   float64 // clock time at the end of the run
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithHaltOnFailure stops routing a material at its first deferred stage
// instead of passing it on to the next stage.
func WithHaltOnFailure() PipelineOption {
	return func(p *Pipeline) { p.haltOnFailure = true }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) PipelineOption {
	return func(p *Pipeline) { p.runID = id }
}

// WithHorizon stops draining before any event later than horizon.
func WithHorizon(horizon float64) PipelineOption {
	return func(p *Pipeline) { p.horizon = horizon }
}

// Pipeline owns the ordered stages and the shared resource pool and routes
// materials through them on a single clock.
type Pipeline struct {
	cfg       Config
	clock     *SimulationClock
	stages    []*Stage
	resources map[string]*Resource

	haltOnFailure bool
	runID         string
	horizon       float64

	materials int
	finished  int
	halted    int
	err       error
}

// NewPipeline validates cfg and builds the five-stage pipeline with the
// reference machines and operators attached to every stage. sink may be nil.
func NewPipeline(cfg Config, clock *SimulationClock, rng RandomSource, sink report.Sink, opts ...PipelineOption) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = NewSimulationClock()
	}
	p := &Pipeline{
		cfg:       cfg,
		clock:     clock,
		resources: make(map[string]*Resource),
		runID:     uuid.NewString(),
		horizon:   math.Inf(1),
	}
	for _, opt := range opts {
		opt(p)
	}

	machines := make([]*Resource, 0, len(DefaultMachineNames))
	for _, name := range DefaultMachineNames {
		m := NewMachine(name)
		p.resources[name] = m
		machines = append(machines, m)
	}
	operators := make([]*Resource, 0, len(DefaultOperatorNames))
	for _, name := range DefaultOperatorNames {
		o := NewOperator(name)
		p.resources[name] = o
		operators = append(operators, o)
	}

	for _, kind := range AllStageKinds() {
		st := NewStage(kind.DisplayName(), kind, clock, &p.cfg, rng, sink)
		st.RunID = p.runID
		for _, m := range machines {
			st.AddMachine(m)
		}
		for _, o := range operators {
			st.AddOperator(o)
		}
		p.stages = append(p.stages, st)
	}

	logrus.Infof("Pipeline %s: %d stages, machines=%d, shift=%d, haltOnFailure=%v",
		p.runID, len(p.stages), cfg.MachineCount, cfg.ShiftLength, p.haltOnFailure)
	return p, nil
}

// RunID returns the identifier stamped on every record of this pipeline.
func (p *Pipeline) RunID() string { return p.runID }

// Clock returns the shared simulation clock.
func (p *Pipeline) Clock() *SimulationClock { return p.clock }

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Stages returns the stages in pipeline order.
func (p *Pipeline) Stages() []*Stage { return p.stages }

// Stage returns the stage with the given name or kind tag.
func (p *Pipeline) Stage(name string) (*Stage, bool) {
	kind, err := ParseStageKind(name)
	if err != nil {
		return nil, false
	}
	for _, st := range p.stages {
		if st.Kind == kind {
			return st, true
		}
	}
	return nil, false
}

// Resource returns a pooled machine or operator by name.
func (p *Pipeline) Resource(name string) (*Resource, bool) {
	r, ok := p.resources[name]
	return r, ok
}

// Filter returns the stages whose names appear in names, preserving pipeline
// order. No names means every stage.
func (p *Pipeline) Filter(names ...string) ([]*Stage, error) {
	if len(names) == 0 {
		return p.stages, nil
	}
	want := make(map[StageKind]bool, len(names))
	for _, n := range names {
		kind, err := ParseStageKind(n)
		if err != nil {
			return nil, err
		}
		want[kind] = true
	}
	out := make([]*Stage, 0, len(want))
	for _, st := range p.stages {
		if want[st.Kind] {
			out = append(out, st)
		}
	}
	return out, nil
}

// Route schedules a material to start through the named stages (all stages
// if none) at the current time. Each stage starts as its own event; the next
// stage starts when the previous one completes, or right away when it was
// deferred. done runs once the material leaves its last stage; it may be nil.
// Route only schedules; the caller drains the clock.
func (p *Pipeline) Route(m *Material, done func(), stageNames ...string) error {
	stages, err := p.Filter(stageNames...)
	if err != nil {
		return fmt.Errorf("route %s: %w", m.Name, err)
	}
	p.materials++
	p.startStage(m, stages, 0, done)
	return nil
}

func (p *Pipeline) startStage(m *Material, stages []*Stage, i int, done func()) {
	if i == len(stages) {
		p.finished++
		if done != nil {
			done()
		}
		return
	}
	st := stages[i]
	p.clock.After(0, st.Name+" start", func() {
		next := func() { p.startStage(m, stages, i+1, done) }
		outcome, err := st.Process(m, next)
		if err != nil {
			if p.err == nil {
				p.err = err
			}
			return
		}
		if outcome == report.OutcomeDeferred {
			if p.haltOnFailure {
				logrus.Infof("[t=%010.4f] %s halted at %s", p.clock.Now(), m.Name, st.Name)
				p.halted++
				if done != nil {
					done()
				}
				return
			}
			next()
		}
	})
}

// Drain advances the clock until it is idle, the horizon is reached or ctx
// is cancelled. Returns the number of events executed.
func (p *Pipeline) Drain(ctx context.Context) (int, error) {
	executed := 0
	for !p.clock.IsIdle() {
		if err := ctx.Err(); err != nil {
			return executed, err
		}
		if next, _ := p.clock.NextTime(); next > p.horizon {
			logrus.Infof("[t=%010.4f] horizon %.4f reached with %d events pending", p.clock.Now(), p.horizon, p.clock.Pending())
			break
		}
		p.clock.Advance()
		executed++
		if p.err != nil {
			return executed, p.err
		}
	}
	return executed, nil
}

// RunSingle routes one material through every stage and drains the clock.
func (p *Pipeline) RunSingle(ctx context.Context, name string) (*RunResult, error) {
	before := p.snapshot()
	if err := p.Route(&Material{Name: name}, nil); err != nil {
		return nil, err
	}
	events, err := p.Drain(ctx)
	return p.result(before, events), err
}

// RunProducts routes one material per product type, one product at a time:
// the setup delay elapses as an event, then the material visits the
// product's stages in pipeline order. The next product starts when the
// previous one leaves its route.
func (p *Pipeline) RunProducts(ctx context.Context, products []ProductType) (*RunResult, error) {
	for _, pt := range products {
		if err := pt.Validate(); err != nil {
			return nil, err
		}
	}
	before := p.snapshot()
	p.startProduct(products, 0)
	events, err := p.Drain(ctx)
	return p.result(before, events), err
}

func (p *Pipeline) startProduct(products []ProductType, i int) {
	if i == len(products) {
		return
	}
	pt := products[i]
	logrus.Infof("[t=%010.4f] Processing product type: %s (setup %.2f)", p.clock.Now(), pt.Name, pt.SetupTime)
	p.clock.After(pt.SetupTime, "setup "+pt.Name, func() {
		done := func() { p.startProduct(products, i+1) }
		if err := p.Route(&Material{Name: pt.Name}, done, pt.Stages...); err != nil && p.err == nil {
			p.err = err
		}
	})
}

// Decommission takes a machine out of service and cancels any repair
// scheduled for it. Returns how many repairs were cancelled.
func (p *Pipeline) Decommission(name string) (int, error) {
	r, ok := p.resources[name]
	if !ok {
		return 0, fmt.Errorf("decommission: unknown resource %q", name)
	}
	cancelled := 0
	for _, st := range p.stages {
		if st.CancelRepair(name) {
			cancelled++
		}
	}
	r.Decommission()
	logrus.Infof("[t=%010.4f] %s %s decommissioned, %d repair(s) cancelled", p.clock.Now(), r.Kind, name, cancelled)
	return cancelled, nil
}

type counters struct{ materials, finished, halted int }

func (p *Pipeline) snapshot() counters {
	return counters{p.materials, p.finished, p.halted}
}

func (p *Pipeline) result(before counters, events int) *RunResult {
	return &RunResult{
		RunID:     p.runID,
		Materials: p.materials - before.materials,
		Finished:  p.finished - before.finished,
		Halted:    p.halted - before.halted,
		Events:    events,
		Elapsed:   p.clock.Now(),
	}
}
