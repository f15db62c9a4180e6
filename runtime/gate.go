// Package runtime owns the process-wide state that every other package in
// this module borrows: the guest execution gate and the main-thread
// identity.
//
// The EE is single-core: at most one host thread may be executing
// recompiled instructions at any moment, so serialization is a plain
// non-recursive mutex shared by all guest threads.
package runtime

import "sync"

// Gate is the single process-wide mutex that serializes native execution
// of recompiled guest code (C3). Every native invocation of recompiled
// guest code must happen while the calling goroutine holds it; any
// blocking syscall stub must Release before blocking and Acquire again
// before touching guest memory or resuming guest execution.
type Gate struct {
	mu sync.Mutex
}

// Acquire blocks until the caller holds the execution gate.
func (g *Gate) Acquire() {
	g.mu.Lock()
}

// Release gives up the execution gate. The caller must have previously
// called Acquire.
func (g *Gate) Release() {
	g.mu.Unlock()
}

// WithGate runs fn while holding the gate, releasing it even if fn panics.
func (g *Gate) WithGate(fn func()) {
	g.Acquire()
	defer g.Release()
	fn()
}
