package kernel

// The six operations below manage the INTC table. AddIntcHandler
// additionally ensures the VBlank timer worker is running,
// since registering an INTC handler is — along with SetVSyncFlag — one of
// the two documented ways a guest can start depending on VBlank delivery.

// AddIntcHandler allocates a handler id in the INTC table for cause,
// capturing the caller's gp, and returns the new id.
func (c *Controller) AddIntcHandler(cause, handler, arg, gp uint32) int {
	id := c.intc.Add(cause, handler, arg, gp)
	c.ensureWorkerRunning()
	return id
}

// RemoveIntcHandler erases handler id from the INTC table.
func (c *Controller) RemoveIntcHandler(id int) int32 {
	c.intc.Remove(id)
	return KEOK
}

// EnableIntcHandler marks INTC handler id enabled.
func (c *Controller) EnableIntcHandler(id int) int32 {
	c.intc.Enable(id)
	return KEOK
}

// DisableIntcHandler marks INTC handler id disabled.
func (c *Controller) DisableIntcHandler(id int) int32 {
	c.intc.Disable(id)
	return KEOK
}

// EnableIntc sets bit cause in the INTC enable mask.
func (c *Controller) EnableIntc(cause uint32) int32 {
	c.intc.EnableCause(cause)
	return KEOK
}

// DisableIntc clears bit cause in the INTC enable mask.
func (c *Controller) DisableIntc(cause uint32) int32 {
	c.intc.DisableCause(cause)
	return KEOK
}

// The DMAC variants are structurally identical to the INTC ones, over
// the DMAC table and mask.

// AddDmacHandler allocates a handler id in the DMAC table for cause.
func (c *Controller) AddDmacHandler(cause, handler, arg, gp uint32) int {
	id := c.dmac.Add(cause, handler, arg, gp)
	c.ensureWorkerRunning()
	return id
}

// RemoveDmacHandler erases handler id from the DMAC table.
func (c *Controller) RemoveDmacHandler(id int) int32 {
	c.dmac.Remove(id)
	return KEOK
}

// EnableDmacHandler marks DMAC handler id enabled.
func (c *Controller) EnableDmacHandler(id int) int32 {
	c.dmac.Enable(id)
	return KEOK
}

// DisableDmacHandler marks DMAC handler id disabled.
func (c *Controller) DisableDmacHandler(id int) int32 {
	c.dmac.Disable(id)
	return KEOK
}

// EnableDmac sets bit cause in the DMAC enable mask.
func (c *Controller) EnableDmac(cause uint32) int32 {
	c.dmac.EnableCause(cause)
	return KEOK
}

// DisableDmac clears bit cause in the DMAC enable mask.
func (c *Controller) DisableDmac(cause uint32) int32 {
	c.dmac.DisableCause(cause)
	return KEOK
}
