package kernel

import "time"

// ensureWorkerRunning lazily starts the VBlank timer worker on first use
// (from SetVSyncFlag, AddIntcHandler or AddDmacHandler), guarded by workerMu so a
// double-spawn is impossible even under concurrent callers.
func (c *Controller) ensureWorkerRunning() {
	c.workerMu.Lock()
	defer c.workerMu.Unlock()

	if c.workerRunning {
		return
	}
	c.workerRunning = true
	c.workerStop = make(chan struct{})
	c.workerDone = make(chan struct{})

	stop := c.workerStop
	done := c.workerDone
	go c.runVBlankWorker(stop, done)
}

// runVBlankWorker is the single detached timer worker. It never touches
// rdram, never holds the table mutex, and never invokes guest code; it
// only posts the occurrence of elapsed VBlank periods for the main
// dispatch thread to drain.
func (c *Controller) runVBlankWorker(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	target := time.Now().Add(c.vblankPeriod)
	for {
		select {
		case <-stop:
			return
		default:
		}
		if c.IsStopRequested() {
			return
		}

		now := time.Now()
		elapsed := int32(0)
		for !now.Before(target) {
			elapsed++
			target = target.Add(c.vblankPeriod)
			now = time.Now()
		}
		if elapsed > c.maxCatchup {
			elapsed = c.maxCatchup
		}
		if elapsed > 0 {
			c.pendingVBlank.Add(elapsed)
		}

		sleep := time.Until(target)
		if sleep <= 0 {
			continue
		}

		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-stop:
			timer.Stop()
			return
		}
	}
}

// PostVBlank adds n elapsed VBlank periods to the pending counter, the
// same way the timer worker does. Frame-stepping tools and tests use it
// to drive delivery without waiting on wall-clock time.
func (c *Controller) PostVBlank(n int32) {
	c.pendingVBlank.Add(n)
}

// Shutdown asks the timer worker to exit and waits up to 100ms for it to
// do so. The handler tables are left intact for teardown.
func (c *Controller) Shutdown() {
	c.RequestStop()
	c.stopWorker()
}

// stopWorker signals the worker goroutine and waits, bounded, for it to
// acknowledge.
func (c *Controller) stopWorker() {
	c.workerMu.Lock()
	if !c.workerRunning {
		c.workerMu.Unlock()
		return
	}
	stop := c.workerStop
	done := c.workerDone
	c.workerMu.Unlock()

	close(stop)
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
	}

	c.workerMu.Lock()
	c.workerRunning = false
	c.workerMu.Unlock()
}
