// Package sim provides the discrete-event engine of the production line
// simulator.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: EventQueue, a min-heap of actions ordered by (time, insertion order)
//   - clock.go: SimulationClock, the only place simulation time moves
//   - stage.go: Stage state machine (resource check, failure/repair, processing)
//   - pipeline.go: the orchestrator that routes materials through stages
//
// # Time model
//
// Nothing blocks. Stage processing is two events, a start and a completion
// scheduled adjustedDuration apart, and machine repairs are events scheduled
// RepairDelay after a failure. Callers drain the clock with
// SimulationClock.Advance (or Pipeline.Drain); every action runs to
// completion before the next event is popped.
//
// Stage records are emitted to a report.Sink (see sim/report).
package sim
