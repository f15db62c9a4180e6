package kernel

import (
	"testing"
	"time"
)

func TestWorkerPostsPendingTicks(t *testing.T) {
	c, _, _ := newTestController(nil)
	c.ensureWorkerRunning()
	defer c.Shutdown()

	time.Sleep(50 * time.Millisecond)

	if c.pendingVBlank.Load() <= 0 {
		t.Fatal("expected at least one pending VBlank tick after 50ms")
	}
}

func TestEnsureWorkerRunningIsIdempotent(t *testing.T) {
	c, _, _ := newTestController(nil)
	c.ensureWorkerRunning()
	c.ensureWorkerRunning()
	defer c.Shutdown()

	c.workerMu.Lock()
	running := c.workerRunning
	c.workerMu.Unlock()
	if !running {
		t.Fatal("expected worker to be running")
	}
}

func TestAddIntcHandlerStartsWorker(t *testing.T) {
	c, _, _ := newTestController(nil)
	defer c.Shutdown()

	c.AddIntcHandler(IntcVBlankStart, 0x1000, 0, 0)

	c.workerMu.Lock()
	running := c.workerRunning
	c.workerMu.Unlock()
	if !running {
		t.Fatal("expected AddIntcHandler to start the VBlank worker")
	}
}

func TestStopWorkerWithin100ms(t *testing.T) {
	c, _, _ := newTestController(nil)
	c.ensureWorkerRunning()

	start := time.Now()
	c.Shutdown()
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("expected shutdown within ~100ms bound, took %v", elapsed)
	}

	c.workerMu.Lock()
	running := c.workerRunning
	c.workerMu.Unlock()
	if running {
		t.Fatal("expected worker to report stopped")
	}
}
