package kernel

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/0xjjjjjj/ps2recomp/mem"
)

// semaState is one guest semaphore. The blocking primitive is
// golang.org/x/sync/semaphore.Weighted; count is tracked separately
// because Weighted does not expose its current value, and ReferSemaStatus
// needs to report it to the guest.
type semaState struct {
	sem      *semaphore.Weighted
	maxCount int32
	count    atomic.Int32
}

// CreateSema allocates a new semaphore with the given initial and maximum
// counts and returns its handler id (EE semaphores are identified the
// same way INTC/DMAC handlers are: a monotonically increasing, never
// reused id).
func (c *Controller) CreateSema(initCount, maxCount uint32) uint32 {
	sem := semaphore.NewWeighted(int64(maxCount))
	if maxCount > initCount {
		// Consume the permits above initCount so TryAcquire/Acquire(1)
		// only succeeds while count > 0.
		sem.Acquire(context.Background(), int64(maxCount-initCount))
	}

	st := &semaState{sem: sem, maxCount: int32(maxCount)}
	st.count.Store(int32(initCount))

	c.semaMu.Lock()
	id := c.nextSem
	c.nextSem++
	c.semas[id] = st
	c.semaMu.Unlock()
	return id
}

// DeleteSema removes a semaphore. A no-op if id is unknown.
func (c *Controller) DeleteSema(id uint32) int32 {
	c.semaMu.Lock()
	delete(c.semas, id)
	c.semaMu.Unlock()
	return KEOK
}

func (c *Controller) semaByID(id uint32) *semaState {
	c.semaMu.Lock()
	st := c.semas[id]
	c.semaMu.Unlock()
	return st
}

// SignalSema increments a semaphore's count, waking one waiter if any is
// blocked in WaitSema.
func (c *Controller) SignalSema(id uint32) int32 {
	st := c.semaByID(id)
	if st == nil {
		return KEOK
	}
	if st.count.Load() >= st.maxCount {
		return KEOK
	}
	st.count.Add(1)
	st.sem.Release(1)
	return KEOK
}

// WaitSema blocks the calling goroutine until the semaphore's count is
// positive, decrementing it on success. The execution gate MUST be
// released before blocking and reacquired before the caller
// touches guest memory or resumes guest execution again; WaitSema does
// exactly that around the blocking acquire.
func (c *Controller) WaitSema(id uint32) int32 {
	st := c.semaByID(id)
	if st == nil {
		return KEOK
	}

	c.gate.Release()
	err := st.sem.Acquire(context.Background(), 1)
	c.gate.Acquire()

	if err != nil {
		return -1
	}
	st.count.Add(-1)
	return KEOK
}

// PollSema attempts a non-blocking acquire; returns KEOK on success or a
// negative status if the semaphore's count is currently zero.
func (c *Controller) PollSema(id uint32) int32 {
	st := c.semaByID(id)
	if st == nil {
		return KEOK
	}
	if !st.sem.TryAcquire(1) {
		return -1
	}
	st.count.Add(-1)
	return KEOK
}

// ReferSemaStatus writes the semaphore's current and maximum count into
// guest memory at infoAddr as two consecutive little-endian uint32s.
func (c *Controller) ReferSemaStatus(rd *mem.RDRAM, id uint32, infoAddr uint32) int32 {
	st := c.semaByID(id)
	if st == nil {
		return KEOK
	}
	rd.WriteU32(infoAddr, uint32(st.count.Load()))
	rd.WriteU32(infoAddr+4, uint32(st.maxCount))
	return KEOK
}
