package lpddr4

import "github.com/pkg/errors"

// GetMMRRegister runs a mode register read. readModeRegVal is the READ_MODEREG command value
// (mode register number and chip select). On a reported read error the returned status is
// the MRR error status, the value is zero and the error wraps ErrIO.
func (c *Controller) GetMMRRegister(readModeRegVal uint32) (value uint64, status uint8, err error) {
	if err := c.guard(); err != nil {
		return 0, 0, err
	}
	l := c.layout
	c.writeField(l.ReadModeReg, readModeRegVal)
	if err := c.pollCtl(c.variant.mrReadDone(), mrDoneIterations); err != nil {
		return 0, 0, err
	}

	// the error interrupt is given a short window; not seeing it means the read is good
	if c.pollCtl(c.variant.mrrError(), mrrErrorIterations) == nil {
		status = uint8(c.readField(l.MRRErrorStatus))
		return 0, status, errors.Wrapf(ErrIO, "mode register read failed with status %#02x", status)
	}
	value = c.variant.mrrData(c)
	loc, err := c.variant.Locate(c.variant.mrReadDone())
	if err != nil {
		return 0, 0, err
	}
	c.ackCtl(loc)
	return value, 0, nil
}

// SetMMRRegister runs a mode register write and returns the MRW status. A non-zero status
// wraps ErrIO.
func (c *Controller) SetMMRRegister(writeModeRegVal uint32) (uint8, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}
	l := c.layout
	c.writeField(l.WriteModeReg, writeModeRegVal)
	done := c.variant.mrWriteDone()
	if err := c.pollCtl(done, mrDoneIterations); err != nil {
		return 0, err
	}
	loc, err := c.variant.Locate(done)
	if err != nil {
		return 0, err
	}
	c.ackCtl(loc)

	status := uint8(c.readField(l.MRWStatus))
	if status != 0 {
		return status, errors.Wrapf(ErrIO, "mode register write failed with status %#02x", status)
	}
	return 0, nil
}
