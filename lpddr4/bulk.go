package lpddr4

import "github.com/pkg/errors"

// ReadReg reads one raw register of a block.
func (c *Controller) ReadReg(block RegBlock, offset uint32) (uint32, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}
	if err := c.checkOffset(block, offset); err != nil {
		return 0, err
	}
	return c.read(Reg{Block: block, Offset: offset}), nil
}

// WriteReg writes one raw register of a block, verifying it when the controller was
// configured with VerifyWrites.
func (c *Controller) WriteReg(block RegBlock, offset, value uint32) error {
	if err := c.guard(); err != nil {
		return err
	}
	if err := c.checkOffset(block, offset); err != nil {
		return err
	}
	r := Reg{Block: block, Offset: offset}
	c.write(r, value)
	if c.verify {
		return c.verifyWrite(r, value)
	}
	return nil
}

// WriteCtlConfig writes values[i] to controller register offsets[i], in order.
func (c *Controller) WriteCtlConfig(offsets []uint16, values []uint32) error {
	return c.writeConfig(CtlRegs, offsets, values)
}

// WritePhyConfig writes values[i] to PHY register offsets[i], in order.
func (c *Controller) WritePhyConfig(offsets []uint16, values []uint32) error {
	return c.writeConfig(PhyRegs, offsets, values)
}

// WritePhyIndepConfig writes values[i] to PI register offsets[i], in order.
func (c *Controller) WritePhyIndepConfig(offsets []uint16, values []uint32) error {
	return c.writeConfig(PhyIndepRegs, offsets, values)
}

// ReadCtlConfig reads controller register offsets[i] into values[i].
func (c *Controller) ReadCtlConfig(offsets []uint16, values []uint32) error {
	return c.readConfig(CtlRegs, offsets, values)
}

// ReadPhyConfig reads PHY register offsets[i] into values[i].
func (c *Controller) ReadPhyConfig(offsets []uint16, values []uint32) error {
	return c.readConfig(PhyRegs, offsets, values)
}

// ReadPhyIndepConfig reads PI register offsets[i] into values[i].
func (c *Controller) ReadPhyIndepConfig(offsets []uint16, values []uint32) error {
	return c.readConfig(PhyIndepRegs, offsets, values)
}

func checkTable(offsets []uint16, values []uint32) error {
	if offsets == nil || values == nil {
		return invalidf("nil register table")
	}
	if len(offsets) != len(values) {
		return invalidf("register table has %d offsets and %d values", len(offsets), len(values))
	}
	return nil
}

// writeConfig stops at the first failing entry. Entries before it stay written.
func (c *Controller) writeConfig(block RegBlock, offsets []uint16, values []uint32) error {
	if err := c.guard(); err != nil {
		return err
	}
	if err := checkTable(offsets, values); err != nil {
		return err
	}
	for i, off := range offsets {
		if err := c.WriteReg(block, uint32(off), values[i]); err != nil {
			return errors.WithMessagef(err, "%s table entry %d", block, i)
		}
	}
	return nil
}

func (c *Controller) readConfig(block RegBlock, offsets []uint16, values []uint32) error {
	if err := c.guard(); err != nil {
		return err
	}
	if err := checkTable(offsets, values); err != nil {
		return err
	}
	for i, off := range offsets {
		v, err := c.ReadReg(block, uint32(off))
		if err != nil {
			return errors.WithMessagef(err, "%s table entry %d", block, i)
		}
		values[i] = v
	}
	return nil
}
