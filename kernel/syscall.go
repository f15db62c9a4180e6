package kernel

import (
	"fmt"

	"github.com/0xjjjjjj/ps2recomp/mem"
	"github.com/0xjjjjjj/ps2recomp/recomp"
)

// Environment is the thin seam the kernel dispatcher needs from whatever
// value the recompiled-function ABI passes as "runtime".
// The top-level engine.PS2Runtime implements this; kernel cannot import
// engine directly without creating an import cycle (engine wires kernel,
// not the other way around), so it asks only for what it uses.
type Environment interface {
	Controller() *Controller
}

// SyscallFunc is the uniform signature every named and numeric syscall
// handler implements.
type SyscallFunc func(rdram []byte, ctx *recomp.Context, rt any)

// namedSyscalls is the compile-time-enumerated table of syscalls callable
// by name. Every PS2 kernel syscall this runtime
// supports is reachable here, whether or not it also has a numeric alias.
var namedSyscalls = map[string]SyscallFunc{
	"SetVSyncFlag":       sysSetVSyncFlag,
	"AddIntcHandler":     sysAddIntcHandler,
	"RemoveIntcHandler":  sysRemoveIntcHandler,
	"EnableIntcHandler":  sysEnableIntcHandler,
	"DisableIntcHandler": sysDisableIntcHandler,
	"EnableIntc":         sysEnableIntc,
	"DisableIntc":        sysDisableIntc,
	"AddDmacHandler":     sysAddDmacHandler,
	"RemoveDmacHandler":  sysRemoveDmacHandler,
	"EnableDmacHandler":  sysEnableDmacHandler,
	"DisableDmacHandler": sysDisableDmacHandler,
	"EnableDmac":         sysEnableDmac,
	"DisableDmac":        sysDisableDmac,
	"CreateSema":         sysCreateSema,
	"DeleteSema":         sysDeleteSema,
	"SignalSema":         sysSignalSema,
	"WaitSema":           sysWaitSema,
	"PollSema":           sysPollSema,
	"ReferSemaStatus":    sysReferSemaStatus,
	"SleepThread":        sysSleepThread,
	"WakeupThread":       sysWakeupThread,
	"iWakeupThread":      sysWakeupThread,
	"GetSystemTime":      sysGetSystemTime,
	"SetOsdConfigParam":  sysSetOsdConfigParam,
	"GetOsdConfigParam":  sysGetOsdConfigParam,
	"FioOpen":            sysFioOpen,
	"FioClose":           sysFioClose,
	"FioRead":            sysFioRead,
	"FioWrite":           sysFioWrite,
	"FioLseek":           sysFioLseek,
}

// DispatchNamedSyscall runs the named syscall table entry for name, if
// any, and reports whether one was found.
func DispatchNamedSyscall(name string, rdram []byte, ctx *recomp.Context, rt any) bool {
	fn, ok := namedSyscalls[name]
	if !ok {
		return false
	}
	fn(rdram, ctx, rt)
	return true
}

// numericSyscalls maps a PS2 syscall number to the same handler table,
// for guest code that issues syscalls by number rather than by name.
var numericSyscalls = map[int32]SyscallFunc{
	0x10: sysSetVSyncFlag,
	0x11: sysAddIntcHandler,
	0x12: sysRemoveIntcHandler,
	0x13: sysEnableIntcHandler,
	0x14: sysDisableIntcHandler,
	0x15: sysEnableIntc,
	0x16: sysDisableIntc,
	0x20: sysAddDmacHandler,
	0x21: sysRemoveDmacHandler,
	0x22: sysEnableDmacHandler,
	0x23: sysDisableDmacHandler,
	0x24: sysEnableDmac,
	0x25: sysDisableDmac,
	0x30: sysCreateSema,
	0x31: sysDeleteSema,
	0x32: sysSignalSema,
	0x33: sysWaitSema,
	0x34: sysPollSema,
	0x35: sysReferSemaStatus,
	0x36: sysSleepThread,
	0x37: sysWakeupThread,
	0x38: sysWakeupThread, // iWakeupThread: same behavior from handler context
	0x40: sysGetSystemTime,
	0x41: sysSetOsdConfigParam,
	0x42: sysGetOsdConfigParam,
	0x50: sysFioOpen,
	0x51: sysFioClose,
	0x52: sysFioRead,
	0x53: sysFioWrite,
	0x54: sysFioLseek,
}

// DispatchNumericSyscall runs the handler registered for syscall number n
// and reports whether one was found.
func DispatchNumericSyscall(n int32, rdram []byte, ctx *recomp.Context, rt any) bool {
	fn, ok := numericSyscalls[n]
	if !ok {
		return false
	}
	fn(rdram, ctx, rt)
	return true
}

// DispatchUnknownSyscall logs the encoded id of a syscall nothing
// handles and writes zero into the guest return register, never
// propagating an error to the guest.
func DispatchUnknownSyscall(id int32, ctx *recomp.Context, rt any) {
	recomp.SetReturn(ctx, 0)
	env, ok := rt.(Environment)
	if !ok {
		return
	}
	c := env.Controller()
	if c.missingFnWarnings.Allow(fmt.Sprintf("todo-syscall:%d", id)) {
		c.logger.Printf("TODO: unhandled syscall %d (%#x)", id, id)
	}
}

// controllerOf extracts the *Controller from rt, returning nil when rt
// does not implement Environment. Callers treat a nil controller as "do
// nothing"; no failure in this layer is allowed to stop the guest.
func controllerOf(rt any) *Controller {
	env, ok := rt.(Environment)
	if !ok {
		return nil
	}
	return env.Controller()
}

func sysSetVSyncFlag(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	flagAddr := uint32(ctx.GPR[recomp.RegA0])
	tickAddr := uint32(ctx.GPR[recomp.RegA1])
	ret := c.SetVSyncFlag(mem.Wrap(rdram), flagAddr, tickAddr)
	recomp.SetReturn(ctx, ret)
}

func sysAddIntcHandler(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	cause := uint32(ctx.GPR[recomp.RegA0])
	handler := uint32(ctx.GPR[recomp.RegA1])
	arg := uint32(ctx.GPR[recomp.RegA3])
	gp := uint32(ctx.GPR[recomp.RegGP])
	id := c.AddIntcHandler(cause, handler, arg, gp)
	recomp.SetReturn(ctx, int32(id))
}

func sysRemoveIntcHandler(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	id := int(int32(ctx.GPR[recomp.RegA0]))
	recomp.SetReturn(ctx, c.RemoveIntcHandler(id))
}

func sysEnableIntcHandler(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	id := int(int32(ctx.GPR[recomp.RegA0]))
	recomp.SetReturn(ctx, c.EnableIntcHandler(id))
}

func sysDisableIntcHandler(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	id := int(int32(ctx.GPR[recomp.RegA0]))
	recomp.SetReturn(ctx, c.DisableIntcHandler(id))
}

func sysEnableIntc(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	recomp.SetReturn(ctx, c.EnableIntc(uint32(ctx.GPR[recomp.RegA0])))
}

func sysDisableIntc(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	recomp.SetReturn(ctx, c.DisableIntc(uint32(ctx.GPR[recomp.RegA0])))
}

func sysAddDmacHandler(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	cause := uint32(ctx.GPR[recomp.RegA0])
	handler := uint32(ctx.GPR[recomp.RegA1])
	arg := uint32(ctx.GPR[recomp.RegA3])
	gp := uint32(ctx.GPR[recomp.RegGP])
	id := c.AddDmacHandler(cause, handler, arg, gp)
	recomp.SetReturn(ctx, int32(id))
}

func sysRemoveDmacHandler(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	id := int(int32(ctx.GPR[recomp.RegA0]))
	recomp.SetReturn(ctx, c.RemoveDmacHandler(id))
}

func sysEnableDmacHandler(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	id := int(int32(ctx.GPR[recomp.RegA0]))
	recomp.SetReturn(ctx, c.EnableDmacHandler(id))
}

func sysDisableDmacHandler(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	id := int(int32(ctx.GPR[recomp.RegA0]))
	recomp.SetReturn(ctx, c.DisableDmacHandler(id))
}

func sysEnableDmac(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	recomp.SetReturn(ctx, c.EnableDmac(uint32(ctx.GPR[recomp.RegA0])))
}

func sysDisableDmac(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	recomp.SetReturn(ctx, c.DisableDmac(uint32(ctx.GPR[recomp.RegA0])))
}
