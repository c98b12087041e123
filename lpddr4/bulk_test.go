package lpddr4_test

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/k3ddrss/logging"
	"go.viam.com/k3ddrss/lpddr4"
)

func TestBlockOffsetBoundary(t *testing.T) {
	counts := map[string]map[lpddr4.RegBlock]uint32{
		"PHY16": {lpddr4.CtlRegs: 423, lpddr4.PhyIndepRegs: 345, lpddr4.PhyRegs: 1406},
		"PHY32": {lpddr4.CtlRegs: 459, lpddr4.PhyIndepRegs: 300, lpddr4.PhyRegs: 1423},
	}
	for _, variant := range variants {
		for block, count := range counts[variant.Name()] {
			c, sim := newController(t, variant)
			test.That(t, variant.Layout().Count(block), test.ShouldEqual, count)

			test.That(t, c.WriteReg(block, count-1, 0xA5A5), test.ShouldBeNil)
			v, err := c.ReadReg(block, count-1)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, v, test.ShouldEqual, uint32(0xA5A5))

			sim.ResetLog()
			err = c.WriteReg(block, count, 1)
			test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)
			_, err = c.ReadReg(block, count)
			test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)
			test.That(t, sim.Accesses(), test.ShouldBeEmpty)
		}
	}
}

func TestRegBlockAddressing(t *testing.T) {
	c, sim := newController(t, lpddr4.PHY32)
	test.That(t, c.WriteReg(lpddr4.CtlRegs, 2, 1), test.ShouldBeNil)
	test.That(t, c.WriteReg(lpddr4.PhyIndepRegs, 2, 2), test.ShouldBeNil)
	test.That(t, c.WriteReg(lpddr4.PhyRegs, 2, 3), test.ShouldBeNil)
	test.That(t, sim.Peek(sim.Base+0x8), test.ShouldEqual, uint32(1))
	test.That(t, sim.Peek(sim.Base+0x2008), test.ShouldEqual, uint32(2))
	test.That(t, sim.Peek(sim.Base+0x4008), test.ShouldEqual, uint32(3))

	block, err := lpddr4.ParseRegBlock("pi")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, block, test.ShouldEqual, lpddr4.PhyIndepRegs)
	_, err = lpddr4.ParseRegBlock("dram")
	test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)
}

func TestWriteConfigStopsAtInvalidOffset(t *testing.T) {
	c, sim := newController(t, lpddr4.PHY16)
	err := c.WritePhyIndepConfig([]uint16{1, 2, 345, 3}, []uint32{11, 22, 33, 44})
	test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)

	reg := func(off uint32) uint64 {
		return lpddr4.Reg{Block: lpddr4.PhyIndepRegs, Offset: off}.Addr(sim.Base)
	}
	test.That(t, sim.Peek(reg(1)), test.ShouldEqual, uint32(11))
	test.That(t, sim.Peek(reg(2)), test.ShouldEqual, uint32(22))
	test.That(t, sim.Writes(reg(3)), test.ShouldBeEmpty)

	err = c.WriteCtlConfig([]uint16{1}, []uint32{1, 2})
	test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)
	err = c.WritePhyConfig(nil, []uint32{1})
	test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)
}

func TestReadConfig(t *testing.T) {
	c, _ := newController(t, lpddr4.PHY32)
	offsets := []uint16{0, 1280, 1422}
	test.That(t, c.WritePhyConfig(offsets, []uint32{7, 8, 9}), test.ShouldBeNil)
	values := make([]uint32, len(offsets))
	test.That(t, c.ReadPhyConfig(offsets, values), test.ShouldBeNil)
	test.That(t, values, test.ShouldResemble, []uint32{7, 8, 9})

	test.That(t, c.WriteCtlConfig([]uint16{5, 6}, []uint32{5, 6}), test.ShouldBeNil)
	values = make([]uint32, 2)
	test.That(t, c.ReadCtlConfig([]uint16{6, 5}, values), test.ShouldBeNil)
	test.That(t, values, test.ShouldResemble, []uint32{6, 5})

	err := c.ReadPhyIndepConfig([]uint16{300}, make([]uint32, 1))
	test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)
}

func TestVerifyWrites(t *testing.T) {
	masks := &lpddr4.RWMasks{
		Ctl:        []uint32{0xFFFFFFFF, 0x0000FFFF},
		PhyIndep:   []uint32{0xFF},
		DataSlices: [][]uint32{{0x1}, {0x1, 0xF0}},
		AddrSlice:  []uint32{0xFF00},
		PhyCore:    []uint32{0, 0xFFFFFFFF},
	}
	sim := newSim(lpddr4.PHY16)
	cfg := sim.Config()
	cfg.Logger = logging.NewTestLogger(t)
	cfg.VerifyWrites = true
	cfg.Masks = masks
	var c lpddr4.Controller
	test.That(t, c.Init(cfg), test.ShouldBeNil)

	addr := func(block lpddr4.RegBlock, off uint32) uint64 {
		return lpddr4.Reg{Block: block, Offset: off}.Addr(sim.Base)
	}

	// bits outside the mask may read back differently
	sim.Stuck(addr(lpddr4.CtlRegs, 1), 0xFFFF0000)
	test.That(t, c.WriteReg(lpddr4.CtlRegs, 1, 0xFFFFFFFF), test.ShouldBeNil)
	sim.Stuck(addr(lpddr4.CtlRegs, 0), 0x1)
	err := c.WriteReg(lpddr4.CtlRegs, 0, 0x1)
	test.That(t, errors.Is(err, lpddr4.ErrVerify), test.ShouldBeTrue)
	test.That(t, errors.Is(err, lpddr4.ErrIO), test.ShouldBeTrue)

	// no mask entry means nothing to check
	sim.Stuck(addr(lpddr4.PhyIndepRegs, 7), 0xFFFFFFFF)
	test.That(t, c.WriteReg(lpddr4.PhyIndepRegs, 7, 1), test.ShouldBeNil)

	// PHY masks are resolved per data slice, per address slice and for the core
	for _, tc := range []struct {
		offset uint32
		stuck  uint32
		fails  bool
	}{
		{0, 0x1, true},
		{256 + 1, 0x10, true},
		{256 + 1, 0x0F, false},
		{512, 0x100, true},
		{1024, 0x100, true},
		{1024, 0x1, false},
		{1280, 0xFFFFFFFF, false},
		{1281, 0x4, true},
	} {
		sim.Stuck(addr(lpddr4.PhyRegs, tc.offset), tc.stuck)
		err := c.WriteReg(lpddr4.PhyRegs, tc.offset, 0xFFFFFFFF)
		test.That(t, errors.Is(err, lpddr4.ErrVerify), test.ShouldEqual, tc.fails)
	}

	// table writes stop at the first mismatch
	err = c.WriteCtlConfig([]uint16{0, 2}, []uint32{0x1, 0x2})
	test.That(t, errors.Is(err, lpddr4.ErrVerify), test.ShouldBeTrue)
	test.That(t, sim.Writes(addr(lpddr4.CtlRegs, 2)), test.ShouldBeEmpty)
}
