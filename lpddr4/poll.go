package lpddr4

import "github.com/pkg/errors"

// pollCtl waits for a controller interrupt. Every iteration delays first and then checks, so
// a timeout costs exactly max delays.
func (c *Controller) pollCtl(id CtlInterrupt, max uint32) error {
	loc, err := c.variant.Locate(id)
	if err != nil {
		return err
	}
	for i := uint32(0); ; {
		c.port.DelayNs(c.pollDelayNs)
		i++
		if c.ctlAsserted(loc) {
			c.logger.Debugw("interrupt asserted", "interrupt", c.variant.CtlInterruptName(id), "iterations", i)
			return nil
		}
		if i >= max {
			return errors.Wrapf(ErrTimeout, "waiting for %s after %d polls", c.variant.CtlInterruptName(id), i)
		}
	}
}

// pollPhyIndep is pollCtl for PI interrupts.
func (c *Controller) pollPhyIndep(id PhyIndepInterrupt, max uint32) error {
	for i := uint32(0); ; {
		c.port.DelayNs(c.pollDelayNs)
		i++
		if c.phyIndepAsserted(id) {
			c.logger.Debugw("interrupt asserted", "interrupt", id.String(), "iterations", i)
			return nil
		}
		if i >= max {
			return errors.Wrapf(ErrTimeout, "waiting for %s after %d polls", id, i)
		}
	}
}

func (c *Controller) ctlAsserted(loc Location) bool {
	if loc.MasterBit >= 0 {
		master := c.read(loc.Master) &^ masterIntBit
		if master>>uint(loc.MasterBit)&1 == 0 {
			return false
		}
		if loc.CatchAll {
			return true
		}
	}
	return c.readField(loc.Status)>>loc.StatusBit&1 == 1
}

func (c *Controller) ackCtl(loc Location) {
	bit := uint32(1) << loc.AckBit
	if loc.AckRMW {
		c.writeField(loc.Ack, bit)
		return
	}
	c.write(loc.Ack, loc.Ack.Field.Write(0, bit))
}

func (c *Controller) phyIndepAsserted(id PhyIndepInterrupt) bool {
	return c.read(c.layout.PIIntStatus)>>uint32(id)&1 == 1
}

func (c *Controller) ackPhyIndep(id PhyIndepInterrupt) {
	c.write(c.layout.PIIntAck, uint32(1)<<uint32(id))
}
