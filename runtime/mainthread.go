package runtime

import "sync/atomic"

// ThreadID is an opaque host-thread identity. Go has no native
// goroutine-local storage, so callers allocate one via NewThreadID and
// carry it explicitly rather than the runtime inspecting the calling
// goroutine.
type ThreadID uint64

var nextThreadID atomic.Uint64

// NewThreadID allocates a fresh, process-wide unique thread identity. Each
// host thread (goroutine) that will call into recompiled guest code should
// allocate exactly one and reuse it for the lifetime of that thread.
func NewThreadID() ThreadID {
	return ThreadID(nextThreadID.Add(1))
}

// MainThread records which host thread (C9) is the main dispatch thread —
// the sole thread permitted to poll for and deliver VBlank interrupts.
// Dispatching interrupts from any other thread would race
// with recompiled code running concurrently under a different gate holder.
type MainThread struct {
	id atomic.Uint64
}

// SetMainThread records id as the main dispatch thread. Subsequent calls
// overwrite the previous value.
func (m *MainThread) SetMainThread(id ThreadID) {
	m.id.Store(uint64(id))
}

// IsMainThread reports whether id is the recorded main dispatch thread.
func (m *MainThread) IsMainThread(id ThreadID) bool {
	return m.id.Load() == uint64(id)
}
