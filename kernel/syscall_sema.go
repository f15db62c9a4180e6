package kernel

import (
	"time"

	"github.com/0xjjjjjj/ps2recomp/mem"
	"github.com/0xjjjjjj/ps2recomp/recomp"
)

func sysCreateSema(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	initCount := uint32(ctx.GPR[recomp.RegA0])
	maxCount := uint32(ctx.GPR[recomp.RegA1])
	id := c.CreateSema(initCount, maxCount)
	recomp.SetReturn(ctx, int32(id))
}

func sysDeleteSema(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	id := uint32(ctx.GPR[recomp.RegA0])
	recomp.SetReturn(ctx, c.DeleteSema(id))
}

func sysSignalSema(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	id := uint32(ctx.GPR[recomp.RegA0])
	recomp.SetReturn(ctx, c.SignalSema(id))
}

func sysWaitSema(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	id := uint32(ctx.GPR[recomp.RegA0])
	recomp.SetReturn(ctx, c.WaitSema(id))
}

func sysPollSema(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	id := uint32(ctx.GPR[recomp.RegA0])
	recomp.SetReturn(ctx, c.PollSema(id))
}

func sysReferSemaStatus(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	id := uint32(ctx.GPR[recomp.RegA0])
	infoAddr := uint32(ctx.GPR[recomp.RegA1])
	recomp.SetReturn(ctx, c.ReferSemaStatus(mem.Wrap(rdram), id, infoAddr))
}

// sysGetSystemTime writes a monotonically increasing microsecond tick
// count into guest memory at a0. Not cycle-accurate: it is a read-only
// informational syscall, not a timing source the interrupt core depends
// on.
func sysGetSystemTime(rdram []byte, ctx *recomp.Context, rt any) {
	addr := uint32(ctx.GPR[recomp.RegA0])
	mem.Wrap(rdram).WriteU64(addr, uint64(time.Now().UnixMicro()))
	recomp.SetReturn(ctx, KEOK)
}

// The OSD config parameter is a single packed word the BIOS exposes for
// language/aspect/time-zone settings; guests round-trip it verbatim.

func sysSetOsdConfigParam(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	c.osdConfigParam.Store(mem.Wrap(rdram).ReadU32(uint32(ctx.GPR[recomp.RegA0])))
	recomp.SetReturn(ctx, KEOK)
}

func sysGetOsdConfigParam(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	mem.Wrap(rdram).WriteU32(uint32(ctx.GPR[recomp.RegA0]), c.osdConfigParam.Load())
	recomp.SetReturn(ctx, KEOK)
}
