// Package engine wires the guest memory window, the native-function
// registry, the execution gate, and the interrupt controller into the
// single PS2Runtime value the recompiled-function ABI passes around.
package engine

import (
	"errors"
	"time"

	"github.com/spf13/afero"

	"github.com/0xjjjjjj/ps2recomp/config"
	"github.com/0xjjjjjj/ps2recomp/kernel"
	"github.com/0xjjjjjj/ps2recomp/mem"
	"github.com/0xjjjjjj/ps2recomp/recomp"
	"github.com/0xjjjjjj/ps2recomp/runtime"
)

// ErrNoFunction is returned by CallFunction when the target guest address
// has no registered native callable.
var ErrNoFunction = errors.New("ps2recomp: no recompiled function at address")

// PS2Runtime owns every process-wide structure the runtime core needs.
// It is the value passed as the third parameter of the recompiled
// function ABI; syscall handlers reach the interrupt controller through
// its Controller method.
type PS2Runtime struct {
	rdram      *mem.RDRAM
	gate       *runtime.Gate
	mainThread *runtime.MainThread
	registry   *recomp.Registry
	ctl        *kernel.Controller
}

// New builds a fully wired runtime from cfg. resolver may be nil; hostFS
// backs the guest-visible filesystem roots (pass afero.NewOsFs() for real
// disk access, afero.NewMemMapFs() in tests).
func New(cfg *config.Config, resolver recomp.Resolver, hostFS afero.Fs) *PS2Runtime {
	gate := &runtime.Gate{}
	mt := &runtime.MainThread{}
	registry := recomp.NewRegistry(resolver)

	ctl := kernel.NewController(gate, mt, registry)
	ctl.SetTiming(time.Duration(cfg.VBlankPeriodMicros)*time.Microsecond, cfg.MaxCatchup)
	ctl.SetIRQStackTop(cfg.IRQStackTop)
	ctl.SetFileSystem(kernel.NewFileSystem(kernel.PathRoots(cfg.Roots), hostFS))

	return &PS2Runtime{
		rdram:      mem.New(mem.Size),
		gate:       gate,
		mainThread: mt,
		registry:   registry,
		ctl:        ctl,
	}
}

// Controller returns the interrupt controller. This satisfies the seam
// the kernel syscall stubs use to reach it from the opaque runtime
// parameter.
func (r *PS2Runtime) Controller() *kernel.Controller { return r.ctl }

// RDRAM returns the guest memory window.
func (r *PS2Runtime) RDRAM() *mem.RDRAM { return r.rdram }

// Registry returns the native-function registry.
func (r *PS2Runtime) Registry() *recomp.Registry { return r.registry }

// Gate returns the execution gate.
func (r *PS2Runtime) Gate() *runtime.Gate { return r.gate }

// RegisterMainThread allocates a thread identity for the calling
// goroutine and records it as the main dispatch thread.
func (r *PS2Runtime) RegisterMainThread() runtime.ThreadID {
	id := runtime.NewThreadID()
	r.mainThread.SetMainThread(id)
	return id
}

// NewThread allocates a thread identity for an additional guest thread.
func (r *PS2Runtime) NewThread() runtime.ThreadID {
	return runtime.NewThreadID()
}

// CallFunction runs the recompiled function at addr on the calling
// goroutine, holding the execution gate for the duration. A ThreadExit
// escape from the guest is absorbed and reported as a nil error.
func (r *PS2Runtime) CallFunction(tid runtime.ThreadID, addr uint32) error {
	fn, ok := r.registry.LookupFunction(addr)
	if !ok {
		return ErrNoFunction
	}

	ctx := &recomp.Context{PC: addr, Thread: uint64(tid)}

	r.gate.Acquire()
	defer r.gate.Release()
	defer func() {
		if rec := recover(); rec != nil {
			if _, isExit := rec.(recomp.ThreadExit); isExit {
				return
			}
			panic(rec)
		}
	}()
	fn(r.rdram.Bytes(), ctx, r)
	return nil
}

// PollVBlank drains pending VBlank ticks if tid is the main dispatch
// thread. The caller must hold the execution gate.
func (r *PS2Runtime) PollVBlank(tid runtime.ThreadID) {
	r.ctl.PollVBlank(r.rdram, tid, r)
}

// Syscall dispatches a numeric syscall on behalf of recompiled code. The
// caller must hold the execution gate. Unknown numbers are routed to the
// logging sink and return zero to the guest.
func (r *PS2Runtime) Syscall(n int32, ctx *recomp.Context) {
	if !kernel.DispatchNumericSyscall(n, r.rdram.Bytes(), ctx, r) {
		kernel.DispatchUnknownSyscall(n, ctx, r)
	}
}

// DmacTransferComplete fires the DMAC interrupt for the channel at
// channelBase. The caller must hold the execution gate.
func (r *PS2Runtime) DmacTransferComplete(channelBase uint32) {
	r.ctl.DispatchDmacForChannel(r.rdram, channelBase, r)
}

// Shutdown stops the VBlank timer worker, waiting bounded for it to exit.
func (r *PS2Runtime) Shutdown() {
	r.ctl.Shutdown()
}
