// Package kernel implements the EE kernel shim: the syscall dispatcher,
// the INTC/DMAC handler tables, the cooperative VBlank/IRQ dispatch loop,
// the VSync registration, and the blocking-syscall primitives (semaphores,
// sleep, file I/O) that sit on top of the execution gate.
package kernel

import (
	"sort"
	"sync"
)

// HandlerInfo is a registered INTC or DMAC handler.
type HandlerInfo struct {
	ID      int
	Cause   uint32
	Handler uint32
	Arg     uint32
	GP      uint32
	SP      uint32
	Enabled bool
}

// handlerTable is one of the two structurally identical handler tables,
// INTC or DMAC. The handler map and the per-cause enable mask live
// behind the same mutex; INTC and DMAC never need to be locked together,
// so each table carries its own.
type handlerTable struct {
	mu       sync.Mutex
	handlers map[int]*HandlerInfo
	nextID   int
	mask     uint32
}

func newHandlerTable() *handlerTable {
	return &handlerTable{
		handlers: make(map[int]*HandlerInfo),
		nextID:   1,
		mask:     0xFFFFFFFF,
	}
}

// Add allocates the next handler id, never reusing one, and stores a new
// enabled entry with sp forced to 0; the dedicated IRQ stack top is
// substituted at dispatch time.
func (t *handlerTable) Add(cause, handler, arg, gp uint32) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.handlers[id] = &HandlerInfo{
		ID:      id,
		Cause:   cause,
		Handler: handler,
		Arg:     arg,
		GP:      gp,
		SP:      0,
		Enabled: true,
	}
	return id
}

// Remove erases the handler with id, if present. A no-op for id <= 0 or
// an unknown id.
func (t *handlerTable) Remove(id int) {
	if id <= 0 {
		return
	}
	t.mu.Lock()
	delete(t.handlers, id)
	t.mu.Unlock()
}

// setEnabled toggles the enabled bit for id. A no-op if id is absent.
func (t *handlerTable) setEnabled(id int, enabled bool) {
	t.mu.Lock()
	if h, ok := t.handlers[id]; ok {
		h.Enabled = enabled
	}
	t.mu.Unlock()
}

// Enable marks handler id enabled.
func (t *handlerTable) Enable(id int) { t.setEnabled(id, true) }

// Disable marks handler id disabled.
func (t *handlerTable) Disable(id int) { t.setEnabled(id, false) }

// EnableCause sets bit cause in the table's enable mask, if cause < 32.
func (t *handlerTable) EnableCause(cause uint32) {
	if cause >= 32 {
		return
	}
	t.mu.Lock()
	t.mask |= 1 << cause
	t.mu.Unlock()
}

// DisableCause clears bit cause in the table's enable mask, if cause < 32.
func (t *handlerTable) DisableCause(cause uint32) {
	if cause >= 32 {
		return
	}
	t.mu.Lock()
	t.mask &^= 1 << cause
	t.mu.Unlock()
}

// Snapshot returns the enabled handlers registered for cause, in
// ascending id (insertion) order. The table mutex is held only long
// enough to copy matching entries, then released before the caller
// invokes anything. This lets a handler call back into Add/Remove
// without deadlocking against this table, and keeps the in-flight
// snapshot stable regardless of concurrent edits.
func (t *handlerTable) Snapshot(cause uint32) []HandlerInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cause < 32 && t.mask&(1<<cause) == 0 {
		return nil
	}

	var out []HandlerInfo
	for _, h := range t.handlers {
		if h.Cause == cause && h.Enabled {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
