package sim

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventQueue_TimestampOrdering tests that events pop in time order
func TestEventQueue_TimestampOrdering(t *testing.T) {
	q := NewEventQueue()
	q.Schedule(100, nil)
	q.Schedule(50, nil)
	q.Schedule(150, nil)

	want := []float64{50, 100, 150}
	for i, w := range want {
		ev, err := q.PopEarliest()
		require.NoError(t, err)
		if ev.Time != w {
			t.Errorf("event %d time = %v, want %v", i, ev.Time, w)
		}
	}
	assert.True(t, q.IsEmpty())
}

// TestEventQueue_EqualTimes_InsertionOrder tests the FIFO tie-break
func TestEventQueue_EqualTimes_InsertionOrder(t *testing.T) {
	q := NewEventQueue()
	var got []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		name := name // per-iteration copy; go directive is 1.21 (pre-1.22 loopvar semantics)
		q.Schedule(1.0, func() { got = append(got, name) })
	}
	q.Schedule(0.5, func() { got = append(got, "early") })

	for !q.IsEmpty() {
		ev, err := q.PopEarliest()
		require.NoError(t, err)
		ev.Action()
	}
	assert.Equal(t, []string{"early", "a", "b", "c", "d", "e"}, got)
}

func TestEventQueue_RandomSchedules_NonDecreasingAndStable(t *testing.T) {
	// GIVEN many events with heavily colliding times in random order
	rng := rand.New(rand.NewSource(7))
	q := NewEventQueue()
	for i := 0; i < 500; i++ {
		tm := float64(rng.Intn(20)) / 2
		q.Schedule(tm, nil)
	}

	// WHEN drained
	var prev *Event
	count := 0
	for !q.IsEmpty() {
		ev, err := q.PopEarliest()
		require.NoError(t, err)
		// THEN times never decrease and equal times keep insertion order
		if prev != nil {
			require.LessOrEqual(t, prev.Time, ev.Time)
			if prev.Time == ev.Time {
				require.Less(t, prev.seqID, ev.seqID)
			}
		}
		prev = ev
		count++
	}
	assert.Equal(t, 500, count)
}

func TestEventQueue_PopEmpty_ReturnsErrEmptyQueue(t *testing.T) {
	q := NewEventQueue()
	ev, err := q.PopEarliest()
	assert.Nil(t, ev)
	assert.True(t, errors.Is(err, ErrEmptyQueue))
	assert.Nil(t, q.Peek())
}

func TestEventQueue_Peek_IsMinimum(t *testing.T) {
	q := NewEventQueue()
	q.Schedule(3, nil)
	q.Schedule(-1, nil) // past times are legal
	q.Schedule(2, nil)
	require.NotNil(t, q.Peek())
	assert.Equal(t, -1.0, q.Peek().Time)
	assert.Equal(t, 3, q.Len())
}

func TestEventHandle_Cancel_RemovesPendingEvent(t *testing.T) {
	// GIVEN three events, the middle one cancelled
	q := NewEventQueue()
	q.Schedule(1, nil)
	h := q.Schedule(2, nil)
	q.Schedule(3, nil)

	// WHEN cancelled
	require.True(t, h.Pending())
	assert.True(t, h.Cancel())

	// THEN it never pops and a second cancel is a no-op
	assert.False(t, h.Pending())
	assert.False(t, h.Cancel())
	var times []float64
	for !q.IsEmpty() {
		ev, _ := q.PopEarliest()
		times = append(times, ev.Time)
	}
	assert.Equal(t, []float64{1, 3}, times)
}

func TestEventHandle_CancelAfterPop_ReturnsFalse(t *testing.T) {
	q := NewEventQueue()
	h := q.Schedule(1, nil)
	_, err := q.PopEarliest()
	require.NoError(t, err)
	assert.False(t, h.Cancel())
}

func TestEventQueue_ScheduleFromAction_IsReentrant(t *testing.T) {
	q := NewEventQueue()
	ran := 0
	q.Schedule(1, func() {
		ran++
		q.Schedule(2, func() { ran++ })
	})
	for !q.IsEmpty() {
		ev, _ := q.PopEarliest()
		ev.Action()
	}
	assert.Equal(t, 2, ran)
}
