package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationClock_Advance_MovesToEventTime(t *testing.T) {
	// GIVEN a clock with an event at t=2.5
	c := NewSimulationClock()
	var seen float64
	c.Schedule(2.5, func() { seen = c.Now() })

	// WHEN advanced
	ok := c.Advance()

	// THEN now equals the event time, also inside the action
	require.True(t, ok)
	assert.Equal(t, 2.5, c.Now())
	assert.Equal(t, 2.5, seen)
	assert.True(t, c.IsIdle())
}

func TestSimulationClock_Schedule_DoesNotAdvance(t *testing.T) {
	c := NewSimulationClock()
	c.Schedule(10, nil)
	assert.Equal(t, 0.0, c.Now())
	assert.False(t, c.IsIdle())
	assert.Equal(t, 1, c.Pending())
}

func TestSimulationClock_AdvanceIdle_NoOp(t *testing.T) {
	c := NewSimulationClock()
	assert.False(t, c.Advance())
	assert.Equal(t, 0.0, c.Now())
	assert.Equal(t, 0, c.Steps())
}

func TestSimulationClock_ActionSchedulesRelativeToOwnTime(t *testing.T) {
	// GIVEN an action at t=5 that schedules a follow-up 1.5 later
	c := NewSimulationClock()
	var followUp float64
	c.Schedule(5, func() {
		c.After(1.5, "follow-up", func() { followUp = c.Now() })
	})

	// WHEN drained
	n := c.RunUntilIdle(math.Inf(1))

	// THEN the follow-up ran at 6.5, not 1.5
	assert.Equal(t, 2, n)
	assert.Equal(t, 6.5, followUp)
}

func TestSimulationClock_DrainN_ExecutesExactlyN(t *testing.T) {
	c := NewSimulationClock()
	executed := 0
	const n = 37
	for i := 0; i < n; i++ {
		c.Schedule(float64((i*7)%11), func() { executed++ })
	}

	prev := c.Now()
	for !c.IsIdle() {
		c.Advance()
		// advance never decreases now
		require.GreaterOrEqual(t, c.Now(), prev)
		prev = c.Now()
	}
	assert.Equal(t, n, executed)
	assert.Equal(t, n, c.Steps())
	assert.True(t, c.IsIdle())
}

func TestSimulationClock_PastEvent_ClockNeverDecreases(t *testing.T) {
	// GIVEN the clock at t=4 and an event scheduled in the past
	c := NewSimulationClock()
	c.Schedule(4, func() {
		c.Schedule(1, nil)
	})
	c.Advance()
	require.Equal(t, 4.0, c.Now())

	// WHEN the past event is executed
	require.True(t, c.Advance())

	// THEN it ran but the clock stayed at 4
	assert.Equal(t, 4.0, c.Now())
}

func TestSimulationClock_RunUntilIdle_StopsAtHorizon(t *testing.T) {
	c := NewSimulationClock()
	c.Schedule(1, nil)
	c.Schedule(2, nil)
	c.Schedule(10, nil)

	n := c.RunUntilIdle(5)

	assert.Equal(t, 2, n)
	assert.Equal(t, 2.0, c.Now())
	assert.Equal(t, 1, c.Pending())
}

func TestSimulationClock_AdvanceFromAction_Panics(t *testing.T) {
	c := NewSimulationClock()
	c.Schedule(1, func() { c.Advance() })
	assert.Panics(t, func() { c.Advance() })
}

func TestSimulationClock_NextTime(t *testing.T) {
	c := NewSimulationClock()
	_, ok := c.NextTime()
	assert.False(t, ok)
	c.Schedule(3, nil)
	c.Schedule(2, nil)
	next, ok := c.NextTime()
	assert.True(t, ok)
	assert.Equal(t, 2.0, next)
}
