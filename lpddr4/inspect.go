package lpddr4

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	pllReady      = 0x3
	ioCalibDone   = uint32(1) << 23
	ioCalibField  = uint32(0xF) << 28
	ioCalibState  = uint32(0xB) << 28
	rxCalDone     = uint32(1) << 4
	caTrainRL     = uint32(1)<<5 | uint32(1)<<4
	gateLvlErrors = uint32(1)<<7 | uint32(1)<<6
	readLvlErrors = uint32(0xF)<<28 | uint32(0xFF)<<16
	dqLvlStatus   = uint32(1)<<26 | uint32(0xFF)<<18
)

// GetDebugInitInfo inspects the PHY training results into info. PLL lock is checked first,
// then IO calibration. When both pass the PHY observation registers are snapped, and the
// remaining stages are checked in order until one fails; a failing stage still scans all of
// its slices. ErrTraining is returned when any stage failed.
func (c *Controller) GetDebugInitInfo(info *DebugInfo) error {
	if err := c.guard(); err != nil {
		return err
	}
	if info == nil {
		return invalidf("nil debug info")
	}
	*info = DebugInfo{}
	l := c.layout

	found := c.checkPLL(info)
	if !found {
		found = c.checkIOCalib(info)
	}
	if !found {
		c.snapObservations()
	}
	if !found && l.HasRxOffset {
		found = c.scanSlices(l.RxCalLockObs, l.DataSlices, func(v uint32) bool {
			return v&(rxCalDone|0xF) != rxCalDone
		}, &info.RxOffsetError)
	}
	if !found {
		found = c.scanSlices(l.AdrCalvlObs1, l.AddrSlices, func(v uint32) bool {
			return v&(caTrainRL|0xF) != caTrainRL
		}, &info.CATrainingError)
	}
	if !found {
		found = c.scanSlices(l.WrlvlObs, l.DataSlices, func(v uint32) bool {
			return v&l.WrlvlErrMask != 0
		}, &info.WriteLevelingError)
	}
	if !found {
		found = c.scanSlices(l.GtlvlStatusObs, l.DataSlices, func(v uint32) bool {
			return v&gateLvlErrors != 0
		}, &info.GateLevelingError)
	}
	if !found {
		found = c.scanSlices(l.RdlvlStatusObs, l.DataSlices, func(v uint32) bool {
			return v&readLvlErrors != 0
		}, &info.ReadLevelingError)
	}
	if !found {
		found = c.scanSlices(l.WdqlvlObs, l.DataSlices, func(v uint32) bool {
			return v&dqLvlStatus != 0
		}, &info.DQTrainingError)
	}
	if !found {
		return nil
	}

	var failed []string
	for _, check := range info.Checks() {
		if check.Failed {
			failed = append(failed, check.Name)
		}
	}
	c.logger.Debugw("training errors found", "checks", failed)
	return errors.Wrap(ErrTraining, strings.Join(failed, ", "))
}

func (c *Controller) checkPLL(info *DebugInfo) bool {
	l := c.layout
	for _, r := range l.PLLObs {
		if c.read(r)&pllReady != pllReady {
			info.PLLError = true
			return true
		}
	}
	return false
}

func (c *Controller) checkIOCalib(info *DebugInfo) bool {
	l := c.layout
	if c.read(l.CalResultObs)&ioCalibDone != ioCalibDone ||
		c.read(l.CalResult2Obs)&ioCalibDone != ioCalibDone ||
		c.read(l.CalResult3Obs)&ioCalibField != ioCalibState {
		info.IOCalibError = true
		return true
	}
	return false
}

// snapObservations latches the observation registers of every slice.
func (c *Controller) snapObservations() {
	l := c.layout
	for n := 0; n < l.DataSlices; n++ {
		c.setField(l.SnapObsRegs.Slice(n))
	}
	for n := 0; n < l.AddrSlices; n++ {
		c.setField(l.AdrSnapObsRegs.Slice(n))
	}
}

// scanSlices reads r in each of count slices and sets *flag when bad reports any of them.
func (c *Controller) scanSlices(r Reg, count int, bad func(uint32) bool, flag *bool) bool {
	for n := 0; n < count; n++ {
		if bad(c.readField(r.Slice(n))) {
			*flag = true
		}
	}
	return *flag
}
