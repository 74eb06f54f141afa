package sim

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/factory-sim/factory-sim/sim/report"
)

// StageKind selects which base duration a stage looks up.
type StageKind int

const (
	RawMaterialHandling StageKind = iota
	Machining
	Assembling
	Inspecting
	Packaging
)

var stageKindNames = map[StageKind]string{
	RawMaterialHandling: "RawMaterialHandling",
	Machining:           "Machining",
	Assembling:          "Assembling",
	Inspecting:          "Inspecting",
	Packaging:           "Packaging",
}

var stageDisplayNames = map[StageKind]string{
	RawMaterialHandling: "Raw Material Handling",
	Machining:           "Machining",
	Assembling:          "Assembling",
	Inspecting:          "Inspecting",
	Packaging:           "Packaging",
}

// AllStageKinds returns every stage kind in pipeline order.
func AllStageKinds() []StageKind {
	return []StageKind{RawMaterialHandling, Machining, Assembling, Inspecting, Packaging}
}

func (k StageKind) String() string {
	if name, ok := stageKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("StageKind(%d)", int(k))
}

// DisplayName returns the stage name used in reports and product routes.
func (k StageKind) DisplayName() string {
	if name, ok := stageDisplayNames[k]; ok {
		return name
	}
	return k.String()
}

// ParseStageKind accepts either the kind tag ("RawMaterialHandling") or the
// display name ("Raw Material Handling"), case-insensitively.
func ParseStageKind(s string) (StageKind, error) {
	for _, k := range AllStageKinds() {
		if strings.EqualFold(s, k.String()) || strings.EqualFold(s, k.DisplayName()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown stage kind %q", s)
}

// StageState is the per-invocation state of a stage.
type StageState string

const (
	StageIdle              StageState = "idle"
	StageCheckingResources StageState = "checking_resources"
	StageFailed            StageState = "failed"
	StageProcessing        StageState = "processing"
	StageCompleted         StageState = "completed"
)

// Material is one unit of work routed through the pipeline.
type Material struct {
	Name string
}

// Stage is one step of the production pipeline. Every kind shares the same
// failure-check and repair logic; only the base duration differs.
type Stage struct {
	Name  string
	Kind  StageKind
	RunID string

	machines  []*Resource
	operators []*Resource

	clock *SimulationClock
	cfg   *Config
	rng   RandomSource
	sink  report.Sink

	state     StageState
	startTime float64
	endTime   float64
	repairs   map[string]*EventHandle // machine name -> pending repair
}

// NewStage creates a stage bound to the shared clock. sink may be nil.
func NewStage(name string, kind StageKind, clock *SimulationClock, cfg *Config, rng RandomSource, sink report.Sink) *Stage {
	if clock == nil || cfg == nil || rng == nil {
		panic("NewStage: clock, cfg and rng must be non-nil")
	}
	return &Stage{
		Name:    name,
		Kind:    kind,
		clock:   clock,
		cfg:     cfg,
		rng:     rng,
		sink:    sink,
		state:   StageIdle,
		repairs: make(map[string]*EventHandle),
	}
}

// AddMachine attaches a machine. Machines are failure-checked in attachment order.
func (s *Stage) AddMachine(m *Resource) { s.machines = append(s.machines, m) }

// AddOperator attaches an operator.
func (s *Stage) AddOperator(o *Resource) { s.operators = append(s.operators, o) }

// Machines returns the attached machines.
func (s *Stage) Machines() []*Resource { return s.machines }

// Operators returns the attached operators.
func (s *Stage) Operators() []*Resource { return s.operators }

// State returns the state reached by the latest invocation.
func (s *Stage) State() StageState { return s.state }

// StartTime returns the start of the latest invocation.
func (s *Stage) StartTime() float64 { return s.startTime }

// EndTime returns the end of the latest completed invocation.
func (s *Stage) EndTime() float64 { return s.endTime }

// PendingRepair returns the scheduled repair for a machine, if any.
func (s *Stage) PendingRepair(machine string) (*EventHandle, bool) {
	h, ok := s.repairs[machine]
	return h, ok
}

// Process runs one material through the stage.
//
// On a machine failure the machine is held, a repair is scheduled at
// now+RepairDelay and OutcomeDeferred is returned; next is not called.
// Otherwise the stage acquires its resources and schedules its completion
// at now+adjustedDuration; the completion releases them, records EndTime
// and then calls next (which may be nil).
func (s *Stage) Process(m *Material, next func()) (report.Outcome, error) {
	now := s.clock.Now()
	s.startTime = now
	s.state = StageCheckingResources
	logrus.Debugf("[t=%010.4f] %s: processing %s", now, s.Name, m.Name)

	for _, machine := range s.machines {
		if !machine.Available() {
			logrus.Infof("[t=%010.4f] %s: machine %s unavailable (%s)", now, s.Name, machine.Name, machine.State())
			return s.deferMaterial(m, machine), nil
		}
		if s.rng.Float64() < s.cfg.FailureRate(machine.Name) {
			logrus.Warnf("[t=%010.4f] Machine %s failed during %s", now, machine.Name, s.Name)
			if err := machine.Use(); err != nil {
				return "", fmt.Errorf("stage %s: %w", s.Name, err)
			}
			s.scheduleRepair(machine)
			return s.deferMaterial(m, machine), nil
		}
	}
	for _, op := range s.operators {
		if !op.Available() {
			logrus.Infof("[t=%010.4f] %s: operator %s unavailable", now, s.Name, op.Name)
			return s.deferMaterial(m, op), nil
		}
	}

	duration, err := s.cfg.AdjustedDuration(s.Kind)
	if err != nil {
		s.state = StageIdle
		return "", fmt.Errorf("stage %s: %w", s.Name, err)
	}

	held := make([]*Resource, 0, len(s.machines)+len(s.operators))
	held = append(held, s.machines...)
	held = append(held, s.operators...)
	for i, r := range held {
		if err := r.Use(); err != nil {
			for _, acquired := range held[:i] {
				acquired.Release()
			}
			s.state = StageIdle
			return "", fmt.Errorf("stage %s: %w", s.Name, err)
		}
	}

	s.state = StageProcessing
	start := now
	s.clock.After(duration, s.Name+" complete", func() {
		for _, r := range held {
			r.Release()
		}
		s.endTime = s.clock.Now()
		s.state = StageCompleted
		logrus.Debugf("[t=%010.4f] %s: completed %s", s.endTime, s.Name, m.Name)
		s.record(report.StageRecord{
			Material:     m.Name,
			StartTime:    start,
			EndTime:      s.endTime,
			AdjustedTime: duration,
			Outcome:      report.OutcomeCompleted,
		})
		if next != nil {
			next()
		}
	})
	return report.OutcomeCompleted, nil
}

// CancelRepair revokes the pending repair of a machine. The machine stays
// held. Returns false if no repair was pending.
func (s *Stage) CancelRepair(machine string) bool {
	h, ok := s.repairs[machine]
	if !ok {
		return false
	}
	delete(s.repairs, machine)
	return h.Cancel()
}

func (s *Stage) scheduleRepair(machine *Resource) {
	s.repairs[machine.Name] = s.clock.After(s.cfg.RepairDelay, "repair "+machine.Name, func() {
		delete(s.repairs, machine.Name)
		machine.Release()
		logrus.Infof("[t=%010.4f] Machine %s repaired.", s.clock.Now(), machine.Name)
	})
}

func (s *Stage) deferMaterial(m *Material, blocker *Resource) report.Outcome {
	s.state = StageFailed
	duration, _ := s.cfg.AdjustedDuration(s.Kind)
	s.record(report.StageRecord{
		Material:     m.Name,
		StartTime:    s.startTime,
		EndTime:      s.startTime,
		AdjustedTime: duration,
		Outcome:      report.OutcomeDeferred,
		BlockedBy:    blocker.Name,
	})
	return report.OutcomeDeferred
}

func (s *Stage) record(rec report.StageRecord) {
	if s.sink == nil {
		return
	}
	rec.RunID = s.RunID
	rec.Stage = s.Name
	s.sink.Record(rec)
}
