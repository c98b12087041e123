package lpddr4

import "github.com/pkg/errors"

// GetEccEnable returns the ECC setting. PHY16 has no ECC and reports EccDisabled with
// ErrUnsupported.
func (c *Controller) GetEccEnable() (EccEnable, error) {
	if err := c.guard(); err != nil {
		return EccDisabled, err
	}
	if !c.layout.HasECC {
		return EccDisabled, errors.Wrapf(ErrUnsupported, "%s has no ECC", c.variant.Name())
	}
	switch c.readField(c.layout.EccEnable) {
	case 3:
		return EccErrDetectCorrect, nil
	case 2:
		return EccErrDetect, nil
	case 1:
		return EccEnabled, nil
	default:
		return EccDisabled, nil
	}
}

// SetEccEnable writes the ECC setting.
func (c *Controller) SetEccEnable(ecc EccEnable) error {
	if err := c.guard(); err != nil {
		return err
	}
	if ecc > EccErrDetectCorrect {
		return invalidf("ECC setting %d out of range", ecc)
	}
	if !c.layout.HasECC {
		return errors.Wrapf(ErrUnsupported, "%s has no ECC", c.variant.Name())
	}
	c.writeField(c.layout.EccEnable, uint32(ecc))
	return nil
}

// GetReducMode returns the datapath reduction mode.
func (c *Controller) GetReducMode() (ReducMode, error) {
	if err := c.guard(); err != nil {
		return ReducOff, err
	}
	if c.readField(c.layout.Reduc) == 0 {
		return ReducOn, nil
	}
	return ReducOff, nil
}

// SetReducMode writes the datapath reduction mode.
func (c *Controller) SetReducMode(mode ReducMode) error {
	if err := c.guard(); err != nil {
		return err
	}
	if mode > ReducOff {
		return invalidf("reduction mode %d out of range", mode)
	}
	if mode == ReducOn {
		c.writeField(c.layout.Reduc, 0)
	} else {
		c.writeField(c.layout.Reduc, 1)
	}
	return nil
}

// GetDBIReadMode reports whether read data bus inversion is on.
func (c *Controller) GetDBIReadMode() (bool, error) {
	if err := c.guard(); err != nil {
		return false, err
	}
	return c.readField(c.layout.RdDBIEn) != 0, nil
}

// GetDBIWriteMode reports whether write data bus inversion is on.
func (c *Controller) GetDBIWriteMode() (bool, error) {
	if err := c.guard(); err != nil {
		return false, err
	}
	return c.readField(c.layout.WrDBIEn) != 0, nil
}

// SetDBIMode switches read or write data bus inversion.
func (c *Controller) SetDBIMode(mode DBIMode) error {
	if err := c.guard(); err != nil {
		return err
	}
	l := c.layout
	switch mode {
	case DBIReadOn:
		c.writeField(l.RdDBIEn, 1)
	case DBIReadOff:
		c.writeField(l.RdDBIEn, 0)
	case DBIWriteOn:
		c.writeField(l.WrDBIEn, 1)
	case DBIWriteOff:
		c.writeField(l.WrDBIEn, 0)
	default:
		return invalidf("DBI mode %d out of range", mode)
	}
	return nil
}

// GetRefreshRate returns the refresh interval and maximum row active time of a set point.
func (c *Controller) GetRefreshRate(fsp FSP) (tref, trasMax uint32, err error) {
	if err := c.guard(); err != nil {
		return 0, 0, err
	}
	if err := checkFSP(fsp); err != nil {
		return 0, 0, err
	}
	i := fsp.index()
	return c.readField(c.layout.TRef[i]), c.readField(c.layout.TRasMax[i]), nil
}

// SetRefreshRate writes the refresh interval and maximum row active time of one set point only.
func (c *Controller) SetRefreshRate(fsp FSP, tref, trasMax uint32) error {
	if err := c.guard(); err != nil {
		return err
	}
	if err := checkFSP(fsp); err != nil {
		return err
	}
	i := fsp.index()
	l := c.layout
	if !l.TRef[i].Field.Fits(tref) || !l.TRasMax[i].Field.Fits(trasMax) {
		return invalidf("refresh timing tref=%d tras_max=%d does not fit", tref, trasMax)
	}
	c.writeField(l.TRef[i], tref)
	c.writeField(l.TRasMax[i], trasMax)
	return nil
}

// RefreshPerChipSelect sets the interval between refreshes of consecutive chip selects.
func (c *Controller) RefreshPerChipSelect(interval uint32) error {
	if err := c.guard(); err != nil {
		return err
	}
	if !c.layout.TRefInterval.Field.Fits(interval) {
		return invalidf("refresh interval %d does not fit", interval)
	}
	c.writeField(c.layout.TRefInterval, interval)
	return nil
}
