package kernel

import (
	"testing"

	"github.com/0xjjjjjj/ps2recomp/mem"
	"github.com/0xjjjjjj/ps2recomp/recomp"
	"github.com/0xjjjjjj/ps2recomp/runtime"
)

func newTestController(registry *recomp.Registry) (*Controller, *runtime.MainThread, runtime.ThreadID) {
	gate := &runtime.Gate{}
	mt := &runtime.MainThread{}
	id := runtime.NewThreadID()
	mt.SetMainThread(id)
	if registry == nil {
		registry = recomp.NewRegistry(nil)
	}
	return NewController(gate, mt, registry), mt, id
}

// A SetVSyncFlag registration followed by one poll delivers exactly one
// tick to flagAddr/tickAddr and clears the registration.
func TestVSyncDeliveryIsOneShot(t *testing.T) {
	c, _, mainID := newTestController(nil)
	rd := mem.New(4096)

	c.SetVSyncFlag(rd, 0x100, 0x200)
	c.pendingVBlank.Store(1)
	c.PollVBlank(rd, mainID, nil)

	if got := rd.ReadU32(0x100); got != 1 {
		t.Fatalf("expected flag==1, got %d", got)
	}
	if got := rd.ReadU64(0x200); got != 1 {
		t.Fatalf("expected tick==1, got %d", got)
	}

	// One-shot: a second tick without re-registering writes neither.
	c.pendingVBlank.Store(1)
	c.PollVBlank(rd, mainID, nil)
	if got := rd.ReadU32(0x100); got != 1 {
		t.Fatalf("expected flag to stay 1 (not rewritten) after one-shot clear, got %d", got)
	}
	if got := rd.ReadU64(0x200); got != 1 {
		t.Fatalf("expected tick to stay 1 (not rewritten) after one-shot clear, got %d", got)
	}
}

func TestHandlerReceivesCauseAndArg(t *testing.T) {
	registry := recomp.NewRegistry(nil)
	var gotA0, gotA1 uint64
	registry.Register(0xDEAD, func(rdram []byte, ctx *recomp.Context, rt any) {
		gotA0 = ctx.GPR[recomp.RegA0]
		gotA1 = ctx.GPR[recomp.RegA1]
	})

	c, _, mainID := newTestController(registry)
	id := c.AddIntcHandler(IntcVBlankStart, 0xDEAD, 0x42, 0)
	if id < 1 {
		t.Fatalf("expected handler id >= 1, got %d", id)
	}

	rd := mem.New(4096)
	c.pendingVBlank.Store(1)
	c.PollVBlank(rd, mainID, nil)

	if gotA0 != IntcVBlankStart || gotA1 != 0x42 {
		t.Fatalf("expected (cause=%d, arg=0x42), got (%d, %#x)", IntcVBlankStart, gotA0, gotA1)
	}
}

// Registration order is invocation order for a single cause.
func TestOrderingWithinCause(t *testing.T) {
	registry := recomp.NewRegistry(nil)
	var order []string
	registry.Register(0xA, func(rdram []byte, ctx *recomp.Context, rt any) { order = append(order, "A") })
	registry.Register(0xB, func(rdram []byte, ctx *recomp.Context, rt any) { order = append(order, "B") })

	c, _, mainID := newTestController(registry)
	c.AddIntcHandler(IntcVBlankStart, 0xA, 0, 0)
	c.AddIntcHandler(IntcVBlankStart, 0xB, 0, 0)

	rd := mem.New(4096)
	c.pendingVBlank.Store(1)
	c.PollVBlank(rd, mainID, nil)

	if len(order) != 2 || order[0] != "A" || order[1] != "B" {
		t.Fatalf("expected order [A B], got %v", order)
	}
}

// For a single tick, all VBlank-start handlers complete before any
// VBlank-end handler starts.
func TestVBlankStartBeforeVBlankEnd(t *testing.T) {
	registry := recomp.NewRegistry(nil)
	var order []string
	registry.Register(0xA, func(rdram []byte, ctx *recomp.Context, rt any) { order = append(order, "start") })
	registry.Register(0xB, func(rdram []byte, ctx *recomp.Context, rt any) { order = append(order, "end") })

	c, _, mainID := newTestController(registry)
	c.AddIntcHandler(IntcVBlankEnd, 0xB, 0, 0)
	c.AddIntcHandler(IntcVBlankStart, 0xA, 0, 0)

	rd := mem.New(4096)
	c.pendingVBlank.Store(1)
	c.PollVBlank(rd, mainID, nil)

	if len(order) != 2 || order[0] != "start" || order[1] != "end" {
		t.Fatalf("expected [start end], got %v", order)
	}
}

func TestEnableDisableHandler(t *testing.T) {
	registry := recomp.NewRegistry(nil)
	calls := 0
	registry.Register(0xA, func(rdram []byte, ctx *recomp.Context, rt any) { calls++ })

	c, _, mainID := newTestController(registry)
	id := c.AddIntcHandler(IntcVBlankStart, 0xA, 0, 0)
	c.DisableIntcHandler(id)

	rd := mem.New(4096)
	c.pendingVBlank.Store(1)
	c.PollVBlank(rd, mainID, nil)
	if calls != 0 {
		t.Fatalf("expected disabled handler not invoked, got %d calls", calls)
	}

	c.EnableIntcHandler(id)
	c.pendingVBlank.Store(1)
	c.PollVBlank(rd, mainID, nil)
	if calls != 1 {
		t.Fatalf("expected re-enabled handler invoked once, got %d calls", calls)
	}
}

// Pending ticks beyond MaxCatchup are dropped, not queued.
func TestCatchupCap(t *testing.T) {
	registry := recomp.NewRegistry(nil)
	calls := 0
	registry.Register(0xA, func(rdram []byte, ctx *recomp.Context, rt any) { calls++ })

	c, _, mainID := newTestController(registry)
	c.AddIntcHandler(IntcVBlankStart, 0xA, 0, 0)
	c.AddIntcHandler(IntcVBlankEnd, 0xA, 0, 0)

	rd := mem.New(4096)
	c.pendingVBlank.Store(100)
	c.PollVBlank(rd, mainID, nil)

	if calls != MaxCatchup*2 {
		t.Fatalf("expected %d calls (cause2+cause3 x %d), got %d", MaxCatchup*2, MaxCatchup, calls)
	}
}

func TestMissingFunctionDoesNotCrash(t *testing.T) {
	c, _, mainID := newTestController(nil)
	c.AddIntcHandler(IntcVBlankStart, 0xBEEF, 0, 0)

	rd := mem.New(4096)
	c.pendingVBlank.Store(1)
	c.PollVBlank(rd, mainID, nil) // must not panic
}

// A handler removing itself during dispatch does not disrupt the current
// snapshot, and is absent on the next tick.
func TestSnapshotStabilityUnderSelfRemoval(t *testing.T) {
	registry := recomp.NewRegistry(nil)
	c, _, mainID := newTestController(registry)

	var selfID int
	calls := 0
	registry.Register(0xA, func(rdram []byte, ctx *recomp.Context, rt any) {
		calls++
		c.RemoveIntcHandler(selfID)
	})
	registry.Register(0xB, func(rdram []byte, ctx *recomp.Context, rt any) { calls++ })

	selfID = c.AddIntcHandler(IntcVBlankStart, 0xA, 0, 0)
	c.AddIntcHandler(IntcVBlankStart, 0xB, 0, 0)

	rd := mem.New(4096)
	c.pendingVBlank.Store(1)
	c.PollVBlank(rd, mainID, nil)
	if calls != 2 {
		t.Fatalf("expected both handlers in the in-flight snapshot to run, got %d calls", calls)
	}

	calls = 0
	c.pendingVBlank.Store(1)
	c.PollVBlank(rd, mainID, nil)
	if calls != 1 {
		t.Fatalf("expected only the surviving handler on the next tick, got %d calls", calls)
	}
}

// A poll from any thread other than the recorded main dispatch thread
// must have no side effects at all.
func TestMainThreadGatingNoSideEffects(t *testing.T) {
	registry := recomp.NewRegistry(nil)
	calls := 0
	registry.Register(0xA, func(rdram []byte, ctx *recomp.Context, rt any) { calls++ })

	c, _, _ := newTestController(registry)
	c.AddIntcHandler(IntcVBlankStart, 0xA, 0, 0)
	c.pendingVBlank.Store(1)

	other := runtime.NewThreadID()
	rd := mem.New(4096)
	c.PollVBlank(rd, other, nil)

	if calls != 0 {
		t.Fatalf("expected no handler invocation from a non-main thread, got %d calls", calls)
	}
	if c.pendingVBlank.Load() != 1 {
		t.Fatalf("expected pendingVBlank untouched by non-main poll, got %d", c.pendingVBlank.Load())
	}
}

// A recomp.ThreadExit escape from a handler is swallowed; dispatch
// continues to the next handler in the snapshot.
func TestThreadExitSwallowedDispatchContinues(t *testing.T) {
	registry := recomp.NewRegistry(nil)
	registry.Register(0xA, func(rdram []byte, ctx *recomp.Context, rt any) {
		panic(recomp.ThreadExit{Code: 0})
	})
	ran := false
	registry.Register(0xB, func(rdram []byte, ctx *recomp.Context, rt any) { ran = true })

	c, _, mainID := newTestController(registry)
	c.AddIntcHandler(IntcVBlankStart, 0xA, 0, 0)
	c.AddIntcHandler(IntcVBlankStart, 0xB, 0, 0)

	rd := mem.New(4096)
	c.pendingVBlank.Store(1)
	c.PollVBlank(rd, mainID, nil) // must not panic
	if !ran {
		t.Fatal("expected dispatch to continue to the next handler after a ThreadExit")
	}
}

func TestDispatchDmacForChannelUnknownBaseNoop(t *testing.T) {
	c, _, _ := newTestController(nil)
	rd := mem.New(4096)
	c.DispatchDmacForChannel(rd, 0xFFFFFFFF, nil) // must not panic
}

func TestDispatchDmacForChannelInvokesHandler(t *testing.T) {
	registry := recomp.NewRegistry(nil)
	called := false
	registry.Register(0x3000, func(rdram []byte, ctx *recomp.Context, rt any) { called = true })

	c, _, _ := newTestController(registry)
	c.AddDmacHandler(0 /* VIF0 */, 0x3000, 0, 0)

	rd := mem.New(4096)
	c.DispatchDmacForChannel(rd, 0x10008000, nil)
	if !called {
		t.Fatal("expected DMAC handler to run")
	}
}
