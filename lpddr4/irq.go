package lpddr4

// CheckCtlInterrupt reports whether a controller interrupt is asserted.
func (c *Controller) CheckCtlInterrupt(id CtlInterrupt) (bool, error) {
	if err := c.guard(); err != nil {
		return false, err
	}
	if err := c.checkCtlInterrupt(id); err != nil {
		return false, err
	}
	loc, err := c.variant.Locate(id)
	if err != nil {
		return false, err
	}
	return c.ctlAsserted(loc), nil
}

// AckCtlInterrupt clears a controller interrupt and nothing else.
func (c *Controller) AckCtlInterrupt(id CtlInterrupt) error {
	if err := c.guard(); err != nil {
		return err
	}
	if err := c.checkCtlInterrupt(id); err != nil {
		return err
	}
	loc, err := c.variant.Locate(id)
	if err != nil {
		return err
	}
	c.ackCtl(loc)
	return nil
}

// GetCtlInterruptMask returns the controller interrupt mask, one bit per interrupt id on PHY32
// and one bit per master group on PHY16.
func (c *Controller) GetCtlInterruptMask() (uint64, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}
	return c.variant.ctlMask(c), nil
}

// SetCtlInterruptMask writes the controller interrupt mask.
func (c *Controller) SetCtlInterruptMask(mask uint64) error {
	if err := c.guard(); err != nil {
		return err
	}
	return c.variant.setCtlMask(c, mask)
}

// CheckPhyIndepInterrupt reports whether a PI interrupt is asserted.
func (c *Controller) CheckPhyIndepInterrupt(id PhyIndepInterrupt) (bool, error) {
	if err := c.guard(); err != nil {
		return false, err
	}
	if err := checkPhyIndepInterrupt(id); err != nil {
		return false, err
	}
	return c.phyIndepAsserted(id), nil
}

// AckPhyIndepInterrupt clears a PI interrupt.
func (c *Controller) AckPhyIndepInterrupt(id PhyIndepInterrupt) error {
	if err := c.guard(); err != nil {
		return err
	}
	if err := checkPhyIndepInterrupt(id); err != nil {
		return err
	}
	c.ackPhyIndep(id)
	return nil
}

// GetPhyIndepInterruptMask returns the PI interrupt mask.
func (c *Controller) GetPhyIndepInterruptMask() (uint32, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}
	return c.readField(c.layout.PIIntMask), nil
}

// SetPhyIndepInterruptMask writes the PI interrupt mask.
func (c *Controller) SetPhyIndepInterruptMask(mask uint32) error {
	if err := c.guard(); err != nil {
		return err
	}
	if mask >= maxPhyIndepMask {
		return invalidf("PI interrupt mask %#x too wide", mask)
	}
	c.writeField(c.layout.PIIntMask, mask)
	return nil
}

// ServiceInterrupts calls the configured handlers once for every asserted interrupt, controller
// interrupts first. It does not acknowledge anything; handlers do that.
func (c *Controller) ServiceInterrupts(chipSelect uint8) error {
	if err := c.guard(); err != nil {
		return err
	}
	if c.ctlInterruptHandler != nil {
		for id := CtlInterrupt(0); int(id) < c.variant.CtlInterrupts(); id++ {
			loc, err := c.variant.Locate(id)
			if err != nil {
				return err
			}
			if c.ctlAsserted(loc) {
				c.ctlInterruptHandler(c, id, chipSelect)
			}
		}
	}
	if c.phyIndepInterruptHandler != nil {
		for id := PhyIndepInterrupt(0); id.valid(); id++ {
			if c.phyIndepAsserted(id) {
				c.phyIndepInterruptHandler(c, id, chipSelect)
			}
		}
	}
	return nil
}
