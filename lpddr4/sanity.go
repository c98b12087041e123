package lpddr4

// Validators run before any register access. They never look at hardware state.

func validateConfig(cfg *Config) error {
	switch {
	case cfg == nil:
		return invalidf("nil config")
	case cfg.Port == nil:
		return invalidf("config has no register port")
	case cfg.Variant == nil:
		return invalidf("config has no variant")
	case cfg.Base == 0:
		return invalidf("config has no base address")
	case cfg.VerifyWrites && cfg.Masks == nil:
		return invalidf("write verification needs read/write masks")
	}
	return nil
}

func (c *Controller) guard() error {
	if c == nil || !c.initialized {
		return invalidf("controller not initialized")
	}
	return nil
}

func (c *Controller) checkCtlInterrupt(id CtlInterrupt) error {
	if int(id) >= c.variant.CtlInterrupts() {
		return invalidf("controller interrupt %d out of range", id)
	}
	return nil
}

func checkPhyIndepInterrupt(id PhyIndepInterrupt) error {
	if !id.valid() {
		return invalidf("PI interrupt %d out of range", id)
	}
	return nil
}

func checkFSP(fsp FSP) error {
	if !fsp.valid() {
		return invalidf("frequency set point %d out of range", fsp)
	}
	return nil
}

func (c *Controller) checkOffset(block RegBlock, offset uint32) error {
	if !block.valid() {
		return invalidf("register block %d out of range", block)
	}
	if n := c.layout.Count(block); offset >= n {
		return invalidf("%s register %d out of range (%d registers)", block, offset, n)
	}
	return nil
}
