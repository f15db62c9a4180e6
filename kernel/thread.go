package kernel

// sleepState tracks one guest thread's sleep/wakeup handshake. The EE
// kernel counts wakeups: a WakeupThread issued before the target sleeps
// cancels the next SleepThread instead of being lost.
type sleepState struct {
	wakeups int
	wake    chan struct{}
}

func (c *Controller) sleepStateFor(tid uint64) *sleepState {
	st, ok := c.sleepers[tid]
	if !ok {
		st = &sleepState{}
		c.sleepers[tid] = st
	}
	return st
}

// SleepThread blocks the calling guest thread until a matching
// WakeupThread arrives. If a wakeup is already banked, it is consumed and
// the call returns immediately. The execution gate is released for the
// duration of the wait and reacquired before returning.
func (c *Controller) SleepThread(tid uint64) int32 {
	c.sleepMu.Lock()
	st := c.sleepStateFor(tid)
	if st.wakeups > 0 {
		st.wakeups--
		c.sleepMu.Unlock()
		return KEOK
	}
	wake := make(chan struct{})
	st.wake = wake
	c.sleepMu.Unlock()

	c.gate.Release()
	<-wake
	c.gate.Acquire()
	return KEOK
}

// WakeupThread wakes tid if it is sleeping, or banks the wakeup so the
// thread's next SleepThread returns immediately.
func (c *Controller) WakeupThread(tid uint64) int32 {
	c.sleepMu.Lock()
	st := c.sleepStateFor(tid)
	if st.wake != nil {
		close(st.wake)
		st.wake = nil
	} else {
		st.wakeups++
	}
	c.sleepMu.Unlock()
	return KEOK
}
