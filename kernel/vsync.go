package kernel

import "github.com/0xjjjjjj/ps2recomp/mem"

// SetVSyncFlag overwrites the single VSync registration atomically,
// zeroes both guest-visible locations immediately, and ensures the VBlank
// timer worker is running. The registration is one-shot:
// PollVBlank clears it after delivering exactly one tick.
func (c *Controller) SetVSyncFlag(rd *mem.RDRAM, flagAddr, tickAddr uint32) int32 {
	c.vsyncMu.Lock()
	c.vsyncFlag = flagAddr
	c.vsyncTick = tickAddr
	c.vsyncMu.Unlock()

	if flagAddr != 0 {
		rd.WriteU32(flagAddr, 0)
	}
	if tickAddr != 0 {
		rd.WriteU64(tickAddr, 0)
	}

	c.ensureWorkerRunning()
	return KEOK
}

// takeVSyncRegistration atomically increments the tick counter,
// snapshots the current registration, and clears it. Called once per
// delivered VBlank tick from PollVBlank; the VSync mutex is the
// innermost lock, so nothing else is held while a handler later runs.
func (c *Controller) takeVSyncRegistration() (flagAddr, tickAddr uint32, tick uint64) {
	c.vsyncMu.Lock()
	defer c.vsyncMu.Unlock()

	c.tickCounter++
	flagAddr, tickAddr = c.vsyncFlag, c.vsyncTick
	tick = c.tickCounter
	c.vsyncFlag, c.vsyncTick = 0, 0
	return
}
