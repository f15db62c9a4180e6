package kernel

import (
	"github.com/0xjjjjjj/ps2recomp/mem"
	"github.com/0xjjjjjj/ps2recomp/recomp"
)

// maxGuestPathLen bounds how far FioOpen scans guest memory for the path
// terminator. EE path buffers are 256 bytes.
const maxGuestPathLen = 256

func sysFioOpen(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil || c.fs == nil {
		recomp.SetReturn(ctx, errBadPath)
		return
	}
	rd := mem.Wrap(rdram)
	path := rd.ReadCString(uint32(ctx.GPR[recomp.RegA0]), maxGuestPathLen)
	flags := uint32(ctx.GPR[recomp.RegA1])
	writable := flags&0x2 != 0 // O_WRONLY/O_RDWR bit in EE fio flags
	recomp.SetReturn(ctx, c.fs.Open(path, writable))
}

func sysFioClose(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil || c.fs == nil {
		recomp.SetReturn(ctx, errBadFD)
		return
	}
	recomp.SetReturn(ctx, c.fs.Close(int32(ctx.GPR[recomp.RegA0])))
}

func sysFioRead(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil || c.fs == nil {
		recomp.SetReturn(ctx, errBadFD)
		return
	}
	fd := int32(ctx.GPR[recomp.RegA0])
	addr := uint32(ctx.GPR[recomp.RegA1])
	length := uint32(ctx.GPR[recomp.RegA2])
	recomp.SetReturn(ctx, c.fs.Read(mem.Wrap(rdram), fd, addr, length))
}

func sysFioWrite(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil || c.fs == nil {
		recomp.SetReturn(ctx, errBadFD)
		return
	}
	fd := int32(ctx.GPR[recomp.RegA0])
	addr := uint32(ctx.GPR[recomp.RegA1])
	length := uint32(ctx.GPR[recomp.RegA2])
	recomp.SetReturn(ctx, c.fs.Write(mem.Wrap(rdram), fd, addr, length))
}

func sysFioLseek(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil || c.fs == nil {
		recomp.SetReturn(ctx, errBadFD)
		return
	}
	fd := int32(ctx.GPR[recomp.RegA0])
	offset := int64(int32(ctx.GPR[recomp.RegA1]))
	whence := int(int32(ctx.GPR[recomp.RegA2]))
	recomp.SetReturn(ctx, int32(c.fs.Seek(fd, offset, whence)))
}

func sysSleepThread(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	recomp.SetReturn(ctx, c.SleepThread(ctx.Thread))
}

func sysWakeupThread(rdram []byte, ctx *recomp.Context, rt any) {
	c := controllerOf(rt)
	if c == nil {
		recomp.SetReturn(ctx, 0)
		return
	}
	recomp.SetReturn(ctx, c.WakeupThread(ctx.GPR[recomp.RegA0]))
}
