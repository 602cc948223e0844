// Package scheduler drives the per-frame render loop of the demos. The
// loop is expressed as an explicit object with an injected frame
// requester, so in the browser it follows the display refresh through
// `requestAnimationFrame` while the tests drive it with a manual clock.
package scheduler

// FrameRequester schedules a callback for the next display refresh.
type FrameRequester interface {
	// RequestFrame registers fn to be invoked on the next frame and
	// returns a handle which can be used to cancel the registration.
	RequestFrame(fn func()) RequestID

	// CancelFrame drops a registration which did not fire yet.
	CancelFrame(id RequestID)
}

// RequestID identifies a pending frame registration.
type RequestID int

// Scheduler reschedules a tick function once per frame for as long as
// the streaming is active. A single frame registration is outstanding
// at any moment and the next tick is requested only after the current
// one returned, so at most one stylization pass is ever in flight.
type Scheduler struct {
	requester FrameRequester
	tick      func()

	running bool
	pending RequestID
	queued  bool
}

// New creates a new Scheduler invoking tick on every frame.
func New(requester FrameRequester, tick func()) *Scheduler {
	return &Scheduler{
		requester: requester,
		tick:      tick,
	}
}

// Start activates the loop and requests the first frame. Calling Start
// on a running scheduler is a no-op.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.schedule()
}

// Stop deactivates the loop and cancels the pending frame registration,
// so no further tick can be observed after it returns.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	s.running = false

	if s.queued {
		s.requester.CancelFrame(s.pending)
		s.queued = false
	}
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	return s.running
}

func (s *Scheduler) schedule() {
	s.pending = s.requester.RequestFrame(s.onFrame)
	s.queued = true
}

// onFrame runs one tick and requests the next frame. A callback which
// fires after Stop was called becomes a no-op, covering the case of a
// frame registration the platform delivered regardless.
func (s *Scheduler) onFrame() {
	s.queued = false
	if !s.running {
		return
	}

	s.tick()

	if s.running {
		s.schedule()
	}
}
