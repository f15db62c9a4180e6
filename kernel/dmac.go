package kernel

import "github.com/0xjjjjjj/ps2recomp/mem"

// dmaChannelCause maps a DMA channel register base address to the DMAC
// cause index the guest's DMAC handler table is keyed by. Channel bases
// follow the EE's fixed DMA controller memory map.
var dmaChannelCause = map[uint32]uint32{
	0x10008000: 0, // VIF0
	0x10009000: 1, // VIF1
	0x1000a000: 2, // GIF
	0x1000b000: 3, // IPU_FROM
	0x1000b400: 4, // IPU_TO
	0x1000c000: 5, // SIF0
	0x1000c400: 6, // SIF1
	0x1000c800: 7, // SIF2
	0x1000d000: 8, // SPR_FROM
	0x1000d400: 9, // SPR_TO
}

// DispatchDmacForChannel is the entry point DMA-channel emulation calls
// when a transfer completes. It maps channelBase to a DMAC cause and
// runs the identical snapshot-and-invoke protocol INTC dispatch uses.
func (c *Controller) DispatchDmacForChannel(rd *mem.RDRAM, channelBase uint32, rt any) {
	cause, ok := dmaChannelCause[channelBase]
	if !ok {
		return
	}
	c.dispatchDmacForCause(rd, cause, rt)
}

func (c *Controller) dispatchDmacForCause(rd *mem.RDRAM, cause uint32, rt any) {
	c.invokeSnapshot(c.dmac.Snapshot(cause), rd, cause, "dmac", rt)
}
