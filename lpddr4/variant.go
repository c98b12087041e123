package lpddr4

// masterIntBit is the summary bit of INT_STATUS_MASTER; it is not a group.
const masterIntBit = uint32(1) << 31

// Location is where a controller interrupt lives in hardware.
type Location struct {
	// Status holds the interrupt's status bit at StatusBit, counted from the field's shift.
	Status    Reg
	StatusBit uint8
	// Master is the PHY16 master status register. MasterBit is -1 when there is no master
	// level, and otherwise must be set for Status to count.
	Master    Reg
	MasterBit int
	// CatchAll interrupts only have their master bit.
	CatchAll bool
	// Ack clears the interrupt when AckBit is written to it. AckRMW interrupts share the ack
	// register with other fields, which must be preserved.
	Ack    Reg
	AckBit uint8
	AckRMW bool
}

// Variant is a controller build: the PHY data width selects register layout, slice counts
// and the interrupt decoder. The only implementations are PHY16 and PHY32.
type Variant interface {
	Name() string
	Layout() *Layout
	// CtlInterrupts is the number of controller interrupt ids.
	CtlInterrupts() int
	CtlInterruptName(id CtlInterrupt) string
	Locate(id CtlInterrupt) (Location, error)

	enablePIInitiator(c *Controller)
	ctlMask(c *Controller) uint64
	setCtlMask(c *Controller, mask uint64) error
	mrrData(c *Controller) uint64
	mcInitDone() CtlInterrupt
	mrReadDone() CtlInterrupt
	mrWriteDone() CtlInterrupt
	mrrError() CtlInterrupt
}

var (
	// PHY16 is the controller with a 16-bit PHY data width.
	PHY16 Variant = phy16{}
	// PHY32 is the controller with a 32-bit PHY data width.
	PHY32 Variant = phy32{}
)

// ParseVariant accepts "16" or "32" (optionally prefixed with "phy").
func ParseVariant(name string) (Variant, error) {
	switch name {
	case "16", "phy16", "PHY16":
		return PHY16, nil
	case "32", "phy32", "PHY32":
		return PHY32, nil
	}
	return nil, invalidf("unknown controller variant %q", name)
}

type phy16 struct{}

func (phy16) Name() string       { return "PHY16" }
func (phy16) Layout() *Layout    { return layout16 }
func (phy16) CtlInterrupts() int { return ctl16InterruptCount }

func (phy16) CtlInterruptName(id CtlInterrupt) string {
	if id < ctl16InterruptCount {
		return ctl16Names[id]
	}
	return ""
}

func (phy16) Locate(id CtlInterrupt) (Location, error) {
	if id >= ctl16InterruptCount {
		return Location{}, invalidf("controller interrupt %d out of range", id)
	}
	l := layout16
	m := ctl16Map[id]
	for _, g := range ctl16Groups {
		if id < g.min || id > g.max {
			continue
		}
		return Location{
			Status:    g.status(l),
			StatusBit: m.bit,
			Master:    l.IntStatusMaster,
			MasterBit: int(m.group),
			Ack:       g.ack(l),
			AckBit:    m.bit,
			AckRMW:    g.ackRMW,
		}, nil
	}
	return Location{
		Status:    l.IntStatusMaster,
		StatusBit: m.group,
		Master:    l.IntStatusMaster,
		MasterBit: int(m.group),
		CatchAll:  true,
		Ack:       l.IntAckMaster,
		AckBit:    m.group,
	}, nil
}

// enablePIInitiator sets the normal leveling sequence and then the init leveling enable.
func (phy16) enablePIInitiator(c *Controller) {
	l := layout16
	c.setField(l.PINormalLvlSeq)
	c.setField(l.PIInitLvlEn)
}

func (phy16) ctlMask(c *Controller) uint64 {
	return uint64(c.readField(layout16.IntMaskMaster))
}

func (phy16) setCtlMask(c *Controller, mask uint64) error {
	if mask >= 1<<32 {
		return invalidf("controller interrupt mask %#x too wide", mask)
	}
	c.writeField(layout16.IntMaskMaster, uint32(mask))
	return nil
}

func (phy16) mrrData(c *Controller) uint64 {
	return uint64(c.readField(layout16.MRRData[0]))
}

func (phy16) mcInitDone() CtlInterrupt  { return Ctl16MCInitDone }
func (phy16) mrReadDone() CtlInterrupt  { return Ctl16MRReadDone }
func (phy16) mrWriteDone() CtlInterrupt { return Ctl16MRWriteDone }
func (phy16) mrrError() CtlInterrupt    { return Ctl16MRRError }

type phy32 struct{}

func (phy32) Name() string       { return "PHY32" }
func (phy32) Layout() *Layout    { return layout32 }
func (phy32) CtlInterrupts() int { return ctl32InterruptCount }

func (phy32) CtlInterruptName(id CtlInterrupt) string {
	if id < ctl32InterruptCount {
		return ctl32Names[id]
	}
	return ""
}

func (phy32) Locate(id CtlInterrupt) (Location, error) {
	if id >= ctl32InterruptCount {
		return Location{}, invalidf("controller interrupt %d out of range", id)
	}
	l := layout32
	word, bit := 0, uint8(id)
	if id >= ctl32WordBits {
		word, bit = 1, uint8(id-ctl32WordBits)
	}
	return Location{
		Status:    l.IntStatus[word],
		StatusBit: bit,
		MasterBit: -1,
		Ack:       l.IntAck[word],
		AckBit:    bit,
		AckRMW:    word == 1,
	}, nil
}

// enablePIInitiator folds the normal leveling sequence into the init leveling enable value and
// writes the register once.
func (phy32) enablePIInitiator(c *Controller) {
	l := layout32
	v := l.PIInitLvlEn.Field.Set(c.read(l.PIInitLvlEn))
	v = l.PINormalLvlSeq.Field.Set(v)
	c.write(l.PIInitLvlEn, v)
}

func (phy32) ctlMask(c *Controller) uint64 {
	l := layout32
	return uint64(c.readField(l.IntMask[1]))<<ctl32WordBits | uint64(c.readField(l.IntMask[0]))
}

func (phy32) setCtlMask(c *Controller, mask uint64) error {
	if mask >= 1<<(uint(Ctl32LORBits)+1) {
		return invalidf("controller interrupt mask %#x too wide", mask)
	}
	l := layout32
	c.writeField(l.IntMask[0], uint32(mask))
	c.writeField(l.IntMask[1], uint32(mask>>ctl32WordBits))
	return nil
}

func (phy32) mrrData(c *Controller) uint64 {
	l := layout32
	return uint64(c.readField(l.MRRData[1]))<<32 | uint64(c.readField(l.MRRData[0]))
}

func (phy32) mcInitDone() CtlInterrupt  { return Ctl32MCInitDone }
func (phy32) mrReadDone() CtlInterrupt  { return Ctl32MRReadDone }
func (phy32) mrWriteDone() CtlInterrupt { return Ctl32MRWriteDone }
func (phy32) mrrError() CtlInterrupt    { return Ctl32MRRError }
