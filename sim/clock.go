package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SimulationClock owns the event queue and the current simulation time.
// Time only moves when Advance executes an event.
type SimulationClock struct {
	now    float64
	queue  *EventQueue
	steps  int
	inStep bool
}

// NewSimulationClock creates a clock at time zero with an empty queue.
func NewSimulationClock() *SimulationClock {
	return &SimulationClock{queue: NewEventQueue()}
}

// Now returns the current simulation time.
func (c *SimulationClock) Now() float64 {
	return c.now
}

// Schedule queues an action at an absolute time. It never advances the clock.
func (c *SimulationClock) Schedule(at float64, action func()) *EventHandle {
	return c.queue.Schedule(at, action)
}

// ScheduleLabeled queues an action at an absolute time with a log label.
func (c *SimulationClock) ScheduleLabeled(at float64, label string, action func()) *EventHandle {
	return c.queue.ScheduleLabeled(at, label, action)
}

// After queues an action delay time units from now.
func (c *SimulationClock) After(delay float64, label string, action func()) *EventHandle {
	return c.queue.ScheduleLabeled(c.now+delay, label, action)
}

// IsIdle reports whether no events are pending.
func (c *SimulationClock) IsIdle() bool {
	return c.queue.IsEmpty()
}

// Pending returns the number of queued events.
func (c *SimulationClock) Pending() int {
	return c.queue.Len()
}

// Steps returns how many events have been executed.
func (c *SimulationClock) Steps() int {
	return c.steps
}

// NextTime returns the time of the earliest pending event.
func (c *SimulationClock) NextTime() (float64, bool) {
	e := c.queue.Peek()
	if e == nil {
		return 0, false
	}
	return e.Time, true
}

// Advance pops the earliest event, moves the clock to its time and runs its
// action to completion. Events scheduled in the past run without moving the
// clock backwards. Returns false if the queue was empty.
func (c *SimulationClock) Advance() bool {
	if c.inStep {
		panic("SimulationClock: Advance called from inside an event action")
	}
	ev, err := c.queue.PopEarliest()
	if err != nil {
		return false
	}
	if ev.Time > c.now {
		c.now = ev.Time
	} else if ev.Time < c.now {
		logrus.Debugf("[t=%010.4f] late event %q scheduled at %.4f", c.now, ev.Label, ev.Time)
	}
	logrus.Debugf("[t=%010.4f] executing %s", c.now, labelOf(ev))

	c.inStep = true
	defer func() { c.inStep = false }()
	c.steps++
	if ev.Action != nil {
		ev.Action()
	}
	return true
}

// RunUntilIdle drains the queue one event at a time and returns how many
// events ran. Events later than horizon stay queued.
func (c *SimulationClock) RunUntilIdle(horizon float64) int {
	executed := 0
	for !c.IsIdle() {
		if next, _ := c.NextTime(); next > horizon {
			logrus.Infof("[t=%010.4f] horizon %.4f reached with %d events pending", c.now, horizon, c.Pending())
			break
		}
		c.Advance()
		executed++
	}
	return executed
}

func labelOf(ev *Event) string {
	if ev.Label != "" {
		return ev.Label
	}
	return fmt.Sprintf("event@%.4f", ev.Time)
}
