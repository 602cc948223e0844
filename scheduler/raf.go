//go:build js && wasm

package scheduler

import "syscall/js"

// RAF is a FrameRequester backed by the `requestAnimationFrame`
// Javascript function. Since the Scheduler keeps at most one frame
// registration outstanding, a single reusable js.Func trampoline is
// enough and no callback wrapper has to be allocated per frame.
type RAF struct {
	window js.Value
	fn     js.Func
	next   func()
}

// NewRAF creates a frame requester bound to the browser window.
func NewRAF() *RAF {
	r := &RAF{window: js.Global()}
	r.fn = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if fn := r.next; fn != nil {
			r.next = nil
			fn()
		}
		return nil
	})
	return r
}

// RequestFrame registers fn with `requestAnimationFrame`.
func (r *RAF) RequestFrame(fn func()) RequestID {
	r.next = fn
	id := r.window.Call("requestAnimationFrame", r.fn)
	return RequestID(id.Int())
}

// CancelFrame calls `cancelAnimationFrame` on a pending registration.
func (r *RAF) CancelFrame(id RequestID) {
	r.next = nil
	r.window.Call("cancelAnimationFrame", int(id))
}

// Release frees up the resources allocated by the trampoline function.
// The requester must not be used afterwards.
func (r *RAF) Release() {
	r.next = nil
	r.fn.Release()
}
