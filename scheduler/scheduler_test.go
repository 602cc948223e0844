package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock is a FrameRequester driven by hand from the tests.
type manualClock struct {
	nextID    RequestID
	pending   map[RequestID]func()
	requested int
	cancelled int
}

func newManualClock() *manualClock {
	return &manualClock{pending: map[RequestID]func(){}}
}

func (c *manualClock) RequestFrame(fn func()) RequestID {
	c.nextID++
	c.pending[c.nextID] = fn
	c.requested++
	return c.nextID
}

func (c *manualClock) CancelFrame(id RequestID) {
	delete(c.pending, id)
	c.cancelled++
}

// fire delivers every pending frame callback, like one display refresh.
// Registrations made during the delivery land in the next refresh.
func (c *manualClock) fire() {
	pending := c.pending
	c.pending = map[RequestID]func(){}
	for _, fn := range pending {
		fn()
	}
}

func TestScheduler_TicksOncePerFrame(t *testing.T) {
	clock := newManualClock()

	ticks := 0
	s := New(clock, func() { ticks++ })
	s.Start()

	require.True(t, s.Running())
	for i := 0; i < 5; i++ {
		clock.fire()
	}
	assert.Equal(t, 5, ticks)

	// Only one registration may be outstanding at any time.
	assert.Len(t, clock.pending, 1)
}

func TestScheduler_SurvivesUnreadyFrames(t *testing.T) {
	clock := newManualClock()

	// The tick skips its work while the frame source is not ready, the
	// way the demos skip a tick when the video element has no data yet.
	ready := false
	processed := 0
	s := New(clock, func() {
		if !ready {
			return
		}
		processed++
	})
	s.Start()

	for i := 0; i < 10; i++ {
		clock.fire()
	}
	require.True(t, s.Running(), "unready frames must not terminate the loop")
	require.Zero(t, processed)

	ready = true
	clock.fire()
	assert.Equal(t, 1, processed, "the first ready frame must be processed")
}

func TestScheduler_StopCancelsPendingFrame(t *testing.T) {
	clock := newManualClock()

	ticks := 0
	s := New(clock, func() { ticks++ })
	s.Start()
	clock.fire()

	s.Stop()
	require.False(t, s.Running())
	assert.Equal(t, 1, clock.cancelled)
	assert.Empty(t, clock.pending, "no dangling registration after Stop")

	// A refresh arriving after Stop must not tick.
	clock.fire()
	assert.Equal(t, 1, ticks)
}

func TestScheduler_NoTickAfterStopEvenIfQueued(t *testing.T) {
	clock := newManualClock()

	ticks := 0
	s := New(clock, func() { ticks++ })
	s.Start()

	// Simulate a platform which delivers the callback although the
	// registration was cancelled in the meantime.
	fn := clock.pending[1]
	s.Stop()
	fn()

	assert.Zero(t, ticks, "post-stop invocation observed")
}

func TestScheduler_StopFromWithinTick(t *testing.T) {
	clock := newManualClock()

	var s *Scheduler
	ticks := 0
	s = New(clock, func() {
		ticks++
		s.Stop()
	})
	s.Start()

	clock.fire()
	clock.fire()

	assert.Equal(t, 1, ticks)
	assert.False(t, s.Running())
	assert.Empty(t, clock.pending)
}

func TestScheduler_RestartAfterStop(t *testing.T) {
	clock := newManualClock()

	ticks := 0
	s := New(clock, func() { ticks++ })

	s.Start()
	clock.fire()
	s.Stop()

	s.Start()
	clock.fire()
	assert.Equal(t, 2, ticks)
	assert.True(t, s.Running())

	// Start on a running scheduler must not queue a second frame.
	s.Start()
	assert.Len(t, clock.pending, 1)
}
