package kernel

import (
	"fmt"

	"github.com/0xjjjjjj/ps2recomp/mem"
	"github.com/0xjjjjjj/ps2recomp/recomp"
	"github.com/0xjjjjjj/ps2recomp/runtime"
)

// PollVBlank drains pending VBlank ticks and delivers them on the calling
// thread. Only the recorded main dispatch thread may deliver — it is the
// thread holding the execution gate between guest basic blocks, so
// handlers it invokes cannot race recompiled code. Calls from any other
// thread are no-ops.
func (c *Controller) PollVBlank(rd *mem.RDRAM, callerThread runtime.ThreadID, rt any) {
	if !c.mainThread.IsMainThread(callerThread) {
		return
	}

	pending := c.pendingVBlank.Swap(0)
	if pending > c.maxCatchup {
		pending = c.maxCatchup
	}

	for i := int32(0); i < pending; i++ {
		flagAddr, tickAddr, tick := c.takeVSyncRegistration()
		if flagAddr != 0 {
			rd.WriteU32(flagAddr, 1)
		}
		if tickAddr != 0 {
			rd.WriteU64(tickAddr, tick)
		}

		c.dispatchIntc(rd, IntcVBlankStart, tick, rt)
		c.dispatchIntc(rd, IntcVBlankEnd, tick, rt)
	}
}

// dispatchIntc invokes every enabled INTC handler registered for cause,
// in ascending-id order. The table mutex is released before any handler
// runs.
func (c *Controller) dispatchIntc(rd *mem.RDRAM, cause uint32, tick uint64, rt any) {
	c.invokeSnapshot(c.intc.Snapshot(cause), rd, cause, "intc", rt)
}

// invokeSnapshot runs a pre-taken snapshot of handlers, each with a fresh
// register context, skipping (with a rate-limited warning) handlers whose
// address has no recompiled function, and swallowing only
// recomp.ThreadExit escapes.
func (c *Controller) invokeSnapshot(handlers []HandlerInfo, rd *mem.RDRAM, cause uint32, kind string, rt any) {
	for _, h := range handlers {
		fn, ok := c.registry.LookupFunction(h.Handler)
		if !ok {
			if c.missingFnWarnings.Allow(fmt.Sprintf("%s:%#x", kind, h.Handler)) {
				c.logger.Printf("warning: no recompiled function registered for %s handler at %#x (id %d, cause %d)", kind, h.Handler, h.ID, cause)
			}
			continue
		}
		c.invokeHandler(fn, rd, h, cause, kind, rt)
	}
}

// invokeHandler runs a single handler, isolating the caller from a
// recomp.ThreadExit escape (the EE kernel's "exit thread" control flow)
// and from any other panic, which is logged rate-limited and does not
// stop dispatch of the remaining handlers in the snapshot.
func (c *Controller) invokeHandler(fn recomp.Func, rd *mem.RDRAM, h HandlerInfo, cause uint32, kind string, rt any) {
	defer func() {
		if r := recover(); r != nil {
			if _, isExit := r.(recomp.ThreadExit); isExit {
				return
			}
			if c.handlerPanicWarns.Allow(fmt.Sprintf("%s:%d", kind, h.ID)) {
				c.logger.Printf("warning: %s handler id %d (addr %#x) panicked: %v", kind, h.ID, h.Handler, r)
			}
		}
	}()

	sp := h.SP
	if sp == 0 {
		sp = c.irqStackTop
	}
	ctx := recomp.NewInterruptContext(h.Handler, h.GP, sp, h.Arg, cause)
	fn(rd.Bytes(), ctx, rt)
}
