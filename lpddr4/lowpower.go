package lpddr4

func checkLPIWakeUp(param LPIWakeUpParam, fsp FSP) error {
	if param >= lpiWakeUpParamCount {
		return invalidf("low power wake-up parameter %d out of range", param)
	}
	return checkFSP(fsp)
}

// GetLPIWakeUpTime returns a low power interface wake-up time in cycles.
func (c *Controller) GetLPIWakeUpTime(param LPIWakeUpParam, fsp FSP) (uint32, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}
	if err := checkLPIWakeUp(param, fsp); err != nil {
		return 0, err
	}
	return c.readField(c.layout.LPIWakeUp[param][fsp.index()]), nil
}

// SetLPIWakeUpTime sets a low power interface wake-up time. cycles must fit in four bits.
func (c *Controller) SetLPIWakeUpTime(param LPIWakeUpParam, fsp FSP, cycles uint32) error {
	if err := c.guard(); err != nil {
		return err
	}
	if err := checkLPIWakeUp(param, fsp); err != nil {
		return err
	}
	if cycles > maxWakeUpCycles {
		return invalidf("wake-up time %d cycles exceeds %d", cycles, maxWakeUpCycles)
	}
	c.writeField(c.layout.LPIWakeUp[param][fsp.index()], cycles)
	return nil
}
