package lpddr4

import "go.viam.com/k3ddrss/regio"

// Layout is the register map of one controller variant. Offsets are register indexes inside
// their block; PHY slice registers are given for slice 0 of their kind and reached through
// Reg.Slice.
type Layout struct {
	CtlCount      uint32
	PhyIndepCount uint32
	PhyCount      uint32

	DataSlices     int
	AddrSlices     int
	DataSliceRegs  uint32
	AddrSliceRegs  uint32
	PhyCoreRegs    uint32
	addrSliceStart uint32
	coreStart      uint32

	// sequence control
	Start          Reg
	PIStart        Reg
	PINormalLvlSeq Reg
	PIInitLvlEn    Reg

	// PHY16 two level interrupt registers
	IntStatusMaster   Reg
	IntMaskMaster     Reg
	IntAckMaster      Reg
	IntStatusTimeout  Reg
	IntAckTimeout     Reg
	IntStatusTraining Reg
	IntAckTraining    Reg
	IntStatusUserIF   Reg
	IntAckUserIF      Reg
	IntStatusMisc     Reg
	IntAckMisc        Reg
	IntStatusDFI      Reg
	IntAckDFI         Reg
	IntStatusFreq     Reg
	IntAckFreq        Reg
	IntStatusLowPower Reg
	IntAckLowPower    Reg
	IntStatusInit     Reg
	IntAckInit        Reg
	IntStatusMode     Reg
	IntAckMode        Reg
	IntStatusBist     Reg
	IntAckBist        Reg
	IntStatusParity   Reg
	IntAckParity      Reg

	// PHY32 flat interrupt registers
	IntStatus [2]Reg
	IntAck    [2]Reg
	IntMask   [2]Reg

	PIIntStatus Reg
	PIIntAck    Reg
	PIIntMask   Reg

	// mode register access
	ReadModeReg    Reg
	WriteModeReg   Reg
	MRRErrorStatus Reg
	MRRData        [2]Reg
	MRWStatus      Reg

	// low power and modes
	LPIWakeUp    [lpiWakeUpParamCount][3]Reg
	Reduc        Reg
	EccEnable    Reg
	RdDBIEn      Reg
	WrDBIEn      Reg
	TRef         [3]Reg
	TRasMax      [3]Reg
	TRefInterval Reg

	// PHY observation, core registers
	PLLObs        [2]Reg
	CalResultObs  Reg
	CalResult2Obs Reg
	CalResult3Obs Reg

	// PHY observation, slice 0 registers
	SnapObsRegs    Reg
	AdrSnapObsRegs Reg
	AdrCalvlObs1   Reg
	RxCalLockObs   Reg
	WrlvlObs       Reg
	GtlvlStatusObs Reg
	RdlvlStatusObs Reg
	WdqlvlObs      Reg

	// WrlvlErrMask selects the error bits of WrlvlObs.
	WrlvlErrMask uint32
	HasRxOffset  bool
	HasECC       bool
}

// Count returns the register count of a block.
func (l *Layout) Count(b RegBlock) uint32 {
	switch b {
	case PhyRegs:
		return l.PhyCount
	case PhyIndepRegs:
		return l.PhyIndepCount
	default:
		return l.CtlCount
	}
}

func ctl(off uint32, f regio.Field) Reg { return Reg{Block: CtlRegs, Offset: off, Field: f} }
func pi(off uint32, f regio.Field) Reg  { return Reg{Block: PhyIndepRegs, Offset: off, Field: f} }
func phy(off uint32, f regio.Field) Reg { return Reg{Block: PhyRegs, Offset: off, Field: f} }

// newLayout fills the registers shared by both variants.
func newLayout(ctlCount, piCount uint32, data, addr int, dataRegs, addrRegs, coreRegs uint32) *Layout {
	l := &Layout{
		CtlCount:      ctlCount,
		PhyIndepCount: piCount,
		DataSlices:    data,
		AddrSlices:    addr,
		DataSliceRegs: dataRegs,
		AddrSliceRegs: addrRegs,
		PhyCoreRegs:   coreRegs,
	}
	l.addrSliceStart = uint32(data) * sliceWidth
	l.coreStart = uint32(data+addr) * sliceWidth
	l.PhyCount = l.coreStart + coreRegs

	l.Start = ctl(0, regio.Bit(0))
	l.PIStart = pi(0, regio.Bit(0))
	l.PINormalLvlSeq = pi(4, regio.Bit(8))
	l.PIInitLvlEn = pi(4, regio.Bit(16))

	l.PIIntStatus = pi(20, regio.Word)
	l.PIIntAck = pi(21, regio.Word)
	l.PIIntMask = pi(22, regio.Field{Shift: 0, Width: phyIndepInterruptCount})

	l.TRefInterval = ctl(62, regio.Field{Shift: 0, Width: 16})
	for f := 0; f < 3; f++ {
		l.TRef[f] = ctl(56+uint32(f), regio.Field{Shift: 0, Width: 16})
		l.TRasMax[f] = ctl(59+uint32(f), regio.Field{Shift: 0, Width: 17})
	}
	for p := 0; p < lpiWakeUpParamCount; p++ {
		for f := 0; f < 3; f++ {
			k := uint32(p*3 + f)
			l.LPIWakeUp[p][f] = ctl(120+k/4, regio.Field{Shift: uint8(k%4) * 8, Width: 4})
		}
	}

	l.ReadModeReg = ctl(160, regio.Field{Shift: 8, Width: 17})
	l.WriteModeReg = ctl(161, regio.Field{Shift: 0, Width: 27})
	l.MRRErrorStatus = ctl(162, regio.Field{Shift: 0, Width: 8})
	l.MRRData[0] = ctl(163, regio.Word)
	l.MRWStatus = ctl(165, regio.Field{Shift: 0, Width: 8})

	l.Reduc = ctl(200, regio.Bit(16))
	l.RdDBIEn = ctl(202, regio.Bit(16))
	l.WrDBIEn = ctl(203, regio.Bit(0))

	core := func(n uint32) Reg { return phy(l.coreStart+n, regio.Word) }
	l.PLLObs[0] = core(10)
	l.PLLObs[1] = core(11)
	l.CalResultObs = core(60)
	l.CalResult2Obs = core(61)
	l.CalResult3Obs = core(62)

	l.SnapObsRegs = phy(2, regio.Bit(8))
	l.AdrSnapObsRegs = phy(l.addrSliceStart+5, regio.Bit(16))
	l.AdrCalvlObs1 = phy(l.addrSliceStart+30, regio.Word)
	l.GtlvlStatusObs = phy(43, regio.Word)
	l.RdlvlStatusObs = phy(46, regio.Word)
	l.WdqlvlObs = phy(49, regio.Word)
	return l
}

var layout16 = func() *Layout {
	l := newLayout(423, 345, 2, 3, 126, 43, 126)
	l.IntStatusMaster = ctl(300, regio.Word)
	l.IntMaskMaster = ctl(301, regio.Word)
	l.IntAckMaster = ctl(302, regio.Word)
	groups := []struct{ status, ack *Reg }{
		{&l.IntStatusTimeout, &l.IntAckTimeout},
		{&l.IntStatusTraining, &l.IntAckTraining},
		{&l.IntStatusUserIF, &l.IntAckUserIF},
		{&l.IntStatusMisc, &l.IntAckMisc},
		{&l.IntStatusDFI, &l.IntAckDFI},
		{&l.IntStatusFreq, &l.IntAckFreq},
		{&l.IntStatusLowPower, &l.IntAckLowPower},
		{&l.IntStatusInit, &l.IntAckInit},
		{&l.IntStatusMode, &l.IntAckMode},
		{&l.IntStatusBist, &l.IntAckBist},
		{&l.IntStatusParity, &l.IntAckParity},
	}
	for i, g := range groups {
		*g.status = ctl(303+uint32(2*i), regio.Word)
		*g.ack = ctl(304+uint32(2*i), regio.Word)
	}
	// field groups only carry the bits their interrupts use
	narrow := func(status, ack *Reg, width uint8) {
		status.Field = regio.Field{Shift: 0, Width: width}
		ack.Field = status.Field
	}
	narrow(&l.IntStatusMisc, &l.IntAckMisc, 8)
	narrow(&l.IntStatusDFI, &l.IntAckDFI, 6)
	narrow(&l.IntStatusFreq, &l.IntAckFreq, 6)
	narrow(&l.IntStatusLowPower, &l.IntAckLowPower, 4)
	narrow(&l.IntStatusInit, &l.IntAckInit, 4)
	narrow(&l.IntStatusBist, &l.IntAckBist, 1)
	narrow(&l.IntStatusParity, &l.IntAckParity, 3)

	l.WrlvlObs = phy(40, regio.Word)
	l.WrlvlErrMask = 1 << 12
	return l
}()

var layout32 = func() *Layout {
	l := newLayout(459, 300, 4, 1, 140, 52, 143)
	hi := regio.Field{Shift: 0, Width: ctl32InterruptCount - ctl32WordBits}
	l.IntStatus = [2]Reg{ctl(300, regio.Word), ctl(301, hi)}
	l.IntAck = [2]Reg{ctl(302, regio.Word), ctl(303, hi)}
	l.IntMask = [2]Reg{ctl(304, regio.Word), ctl(305, hi)}

	l.MRRData[1] = ctl(164, regio.Word)
	l.EccEnable = ctl(201, regio.Field{Shift: 0, Width: 2})

	l.RxCalLockObs = phy(50, regio.Field{Shift: 0, Width: 8})
	l.WrlvlObs = phy(41, regio.Word)
	l.WrlvlErrMask = 0x3
	l.HasRxOffset = true
	l.HasECC = true
	return l
}()
