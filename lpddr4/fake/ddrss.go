// Package fake implements a simulated LPDDR4 controller on top of a simulated register bank.
package fake

import (
	"sync"

	"go.viam.com/k3ddrss/lpddr4"
	regfake "go.viam.com/k3ddrss/regio/fake"
)

// DefaultBase is the controller base address used by NewDDRSS callers that do not care.
const DefaultBase = 0x0f300000

// Stage is a training stage that can be made to fail.
type Stage int

// Stages in inspection order.
const (
	StagePLL Stage = iota
	StageIOCalib
	StageRxOffset
	StageCATraining
	StageWriteLeveling
	StageGateLeveling
	StageReadLeveling
	StageDQTraining
)

// DDRSS is a simulated controller. Acknowledge registers clear their status registers, the
// PLL and calibration observation registers read healthy, and mode register commands
// complete immediately.
type DDRSS struct {
	*regfake.Bank
	Base    uint64
	Variant lpddr4.Variant
	Layout  *lpddr4.Layout

	mu        sync.Mutex
	mrrValue  uint64
	mrrStatus uint8
	mrwStatus uint8
}

// NewDDRSS returns a healthy simulated controller of the given variant at base.
func NewDDRSS(variant lpddr4.Variant, base uint64) *DDRSS {
	d := &DDRSS{
		Bank:    regfake.NewBank(),
		Base:    base,
		Variant: variant,
		Layout:  variant.Layout(),
	}
	l := d.Layout

	for id := lpddr4.CtlInterrupt(0); int(id) < variant.CtlInterrupts(); id++ {
		loc, err := variant.Locate(id)
		if err != nil {
			panic(err)
		}
		d.MapAck(d.Addr(loc.Ack), d.Addr(loc.Status))
	}
	d.MapAck(d.Addr(l.PIIntAck), d.Addr(l.PIIntStatus))

	for _, r := range l.PLLObs {
		d.Poke(d.Addr(r), 0x3)
	}
	d.Poke(d.Addr(l.CalResultObs), 1<<23)
	d.Poke(d.Addr(l.CalResult2Obs), 1<<23)
	d.Poke(d.Addr(l.CalResult3Obs), 0xB<<28)
	for n := 0; n < l.AddrSlices; n++ {
		d.Poke(d.Addr(l.AdrCalvlObs1.Slice(n)), 0x30)
	}
	if l.HasRxOffset {
		for n := 0; n < l.DataSlices; n++ {
			d.Poke(d.Addr(l.RxCalLockObs.Slice(n)), 0x10<<l.RxCalLockObs.Field.Shift)
		}
	}

	d.OnWrite(d.Addr(l.ReadModeReg), func(b *regfake.Bank, value uint32) { d.completeMRR() })
	d.OnWrite(d.Addr(l.WriteModeReg), func(b *regfake.Bank, value uint32) { d.completeMRW() })
	return d
}

// Addr returns the bus address of r.
func (d *DDRSS) Addr(r lpddr4.Reg) uint64 {
	return r.Addr(d.Base)
}

// Config returns a controller config wired to the simulator.
func (d *DDRSS) Config() *lpddr4.Config {
	return &lpddr4.Config{Base: d.Base, Port: d.Bank, Variant: d.Variant}
}

// CtlInterruptByName finds a controller interrupt of the variant by name, e.g. "MC_INIT_DONE".
func (d *DDRSS) CtlInterruptByName(name string) (lpddr4.CtlInterrupt, bool) {
	for id := lpddr4.CtlInterrupt(0); int(id) < d.Variant.CtlInterrupts(); id++ {
		if d.Variant.CtlInterruptName(id) == name {
			return id, true
		}
	}
	return 0, false
}

// AssertCtl raises a controller interrupt, including its master bit.
func (d *DDRSS) AssertCtl(id lpddr4.CtlInterrupt) {
	loc, err := d.Variant.Locate(id)
	if err != nil {
		panic(err)
	}
	if loc.MasterBit >= 0 {
		d.SetBits(d.Addr(loc.Master), 1<<uint(loc.MasterBit))
		if loc.CatchAll {
			return
		}
	}
	d.SetBits(d.Addr(loc.Status), (1<<loc.StatusBit)<<loc.Status.Field.Shift)
}

// AssertPhyIndep raises a PI interrupt.
func (d *DDRSS) AssertPhyIndep(id lpddr4.PhyIndepInterrupt) {
	d.SetBits(d.Addr(d.Layout.PIIntStatus), 1<<uint32(id))
}

// AssertCtlAfter raises a controller interrupt n delays from now.
func (d *DDRSS) AssertCtlAfter(n int, id lpddr4.CtlInterrupt) {
	d.AfterDelays(d.Delays()+n, func(*regfake.Bank) { d.AssertCtl(id) })
}

// AssertPhyIndepAfter raises a PI interrupt n delays from now.
func (d *DDRSS) AssertPhyIndepAfter(n int, id lpddr4.PhyIndepInterrupt) {
	d.AfterDelays(d.Delays()+n, func(*regfake.Bank) { d.AssertPhyIndep(id) })
}

// CompleteStartAfter makes PI init done assert piPolls delays after the controller start bit is
// written, and controller init done mcPolls delays after that.
func (d *DDRSS) CompleteStartAfter(piPolls, mcPolls int) {
	mcInitDone, ok := d.CtlInterruptByName("MC_INIT_DONE")
	if !ok {
		panic("variant has no MC_INIT_DONE")
	}
	d.OnWrite(d.Addr(d.Layout.Start), func(*regfake.Bank, uint32) {
		d.AssertPhyIndepAfter(piPolls, lpddr4.PIInitDone)
		d.AssertCtlAfter(piPolls+mcPolls, mcInitDone)
	})
}

// SetMRRResponse sets what the next mode register reads return. A non-zero status makes
// them fail with that MRR error status.
func (d *DDRSS) SetMRRResponse(value uint64, status uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mrrValue = value
	d.mrrStatus = status
}

// SetMRWStatus sets the status of the next mode register writes.
func (d *DDRSS) SetMRWStatus(status uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mrwStatus = status
}

func (d *DDRSS) completeMRR() {
	d.mu.Lock()
	value, status := d.mrrValue, d.mrrStatus
	d.mu.Unlock()

	l := d.Layout
	d.Poke(d.Addr(l.MRRData[0]), uint32(value))
	if l.MRRData[1] != (lpddr4.Reg{}) {
		d.Poke(d.Addr(l.MRRData[1]), uint32(value>>32))
	}
	if status != 0 {
		d.Poke(d.Addr(l.MRRErrorStatus), uint32(status)<<l.MRRErrorStatus.Field.Shift)
		if id, ok := d.CtlInterruptByName("MRR_ERROR"); ok {
			d.AssertCtl(id)
		}
	}
	if id, ok := d.CtlInterruptByName("MR_READ_DONE"); ok {
		d.AssertCtl(id)
	}
}

func (d *DDRSS) completeMRW() {
	d.mu.Lock()
	status := d.mrwStatus
	d.mu.Unlock()

	l := d.Layout
	d.Poke(d.Addr(l.MRWStatus), uint32(status)<<l.MRWStatus.Field.Shift)
	if id, ok := d.CtlInterruptByName("MR_WRITE_DONE"); ok {
		d.AssertCtl(id)
	}
}

// Fail makes a training stage report an error. slice selects the PHY slice for per-slice
// stages and is ignored for PLL and IO calibration.
func (d *DDRSS) Fail(stage Stage, slice int) {
	l := d.Layout
	switch stage {
	case StagePLL:
		d.Poke(d.Addr(l.PLLObs[0]), 0)
	case StageIOCalib:
		d.Poke(d.Addr(l.CalResultObs), 0)
	case StageRxOffset:
		d.Poke(d.Addr(l.RxCalLockObs.Slice(slice)), 0)
	case StageCATraining:
		d.Poke(d.Addr(l.AdrCalvlObs1.Slice(slice)), 0x31)
	case StageWriteLeveling:
		d.SetBits(d.Addr(l.WrlvlObs.Slice(slice)), l.WrlvlErrMask)
	case StageGateLeveling:
		d.SetBits(d.Addr(l.GtlvlStatusObs.Slice(slice)), 1<<6)
	case StageReadLeveling:
		d.SetBits(d.Addr(l.RdlvlStatusObs.Slice(slice)), 1<<16)
	case StageDQTraining:
		d.SetBits(d.Addr(l.WdqlvlObs.Slice(slice)), 1<<26)
	}
}
