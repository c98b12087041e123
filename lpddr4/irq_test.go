package lpddr4_test

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/k3ddrss/lpddr4"
)

func TestCtlInterruptRoundTrip(t *testing.T) {
	for _, variant := range variants {
		t.Run(variant.Name(), func(t *testing.T) {
			n := variant.CtlInterrupts()
			for id := lpddr4.CtlInterrupt(0); int(id) < n; id++ {
				c, sim := newController(t, variant)
				sim.AssertCtl(id)
				for other := lpddr4.CtlInterrupt(0); int(other) < n; other++ {
					asserted, err := c.CheckCtlInterrupt(other)
					test.That(t, err, test.ShouldBeNil)
					test.That(t, asserted, test.ShouldEqual, other == id)
				}

				test.That(t, c.AckCtlInterrupt(id), test.ShouldBeNil)
				for other := lpddr4.CtlInterrupt(0); int(other) < n; other++ {
					asserted, err := c.CheckCtlInterrupt(other)
					test.That(t, err, test.ShouldBeNil)
					test.That(t, asserted, test.ShouldBeFalse)
				}
			}
		})
	}
}

func TestCtlInterruptAckIsolation(t *testing.T) {
	for _, variant := range variants {
		t.Run(variant.Name(), func(t *testing.T) {
			n := variant.CtlInterrupts()
			for id := lpddr4.CtlInterrupt(0); int(id) < n; id++ {
				c, sim := newController(t, variant)
				for other := lpddr4.CtlInterrupt(0); int(other) < n; other++ {
					sim.AssertCtl(other)
				}
				test.That(t, c.AckCtlInterrupt(id), test.ShouldBeNil)
				asserted, err := c.CheckCtlInterrupt(id)
				test.That(t, err, test.ShouldBeNil)
				test.That(t, asserted, test.ShouldBeFalse)

				for other := lpddr4.CtlInterrupt(0); int(other) < n; other++ {
					if other == id {
						continue
					}
					asserted, err := c.CheckCtlInterrupt(other)
					test.That(t, err, test.ShouldBeNil)
					test.That(t, asserted, test.ShouldBeTrue)
				}
			}
		})
	}
}

func TestLocate(t *testing.T) {
	loc, err := lpddr4.PHY32.Locate(lpddr4.Ctl32MRWriteDone)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loc.StatusBit, test.ShouldEqual, uint8(2))
	test.That(t, loc.Status, test.ShouldResemble, lpddr4.PHY32.Layout().IntStatus[1])
	test.That(t, loc.MasterBit, test.ShouldEqual, -1)

	loc, err = lpddr4.PHY32.Locate(lpddr4.Ctl32LORBits)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loc.Ack, test.ShouldResemble, lpddr4.PHY32.Layout().IntAck[1])
	test.That(t, loc.AckBit, test.ShouldEqual, uint8(12))

	loc, err = lpddr4.PHY32.Locate(lpddr4.Ctl32DQSOscBVUpdated)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loc.Ack, test.ShouldResemble, lpddr4.PHY32.Layout().IntAck[0])
	test.That(t, loc.AckBit, test.ShouldEqual, uint8(31))

	l16 := lpddr4.PHY16.Layout()
	loc, err = lpddr4.PHY16.Locate(lpddr4.Ctl16TrainingDQSOscDone)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loc.Status, test.ShouldResemble, l16.IntStatusTraining)
	test.That(t, loc.StatusBit, test.ShouldEqual, uint8(12))
	test.That(t, loc.MasterBit, test.ShouldEqual, 5)
	test.That(t, loc.CatchAll, test.ShouldBeFalse)

	loc, err = lpddr4.PHY16.Locate(lpddr4.Ctl16MCInitDone)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loc.Status, test.ShouldResemble, l16.IntStatusInit)
	test.That(t, loc.MasterBit, test.ShouldEqual, 13)
	test.That(t, loc.AckRMW, test.ShouldBeTrue)

	loc, err = lpddr4.PHY16.Locate(lpddr4.Ctl16ECCError)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loc.CatchAll, test.ShouldBeTrue)
	test.That(t, loc.MasterBit, test.ShouldEqual, 1)
	test.That(t, loc.Ack, test.ShouldResemble, l16.IntAckMaster)

	_, err = lpddr4.PHY16.Locate(lpddr4.Ctl16LORBits + 1)
	test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)
	test.That(t, lpddr4.PHY16.CtlInterruptName(lpddr4.Ctl16MRWriteDone), test.ShouldEqual, "MR_WRITE_DONE")
	test.That(t, lpddr4.PHY32.CtlInterruptName(lpddr4.Ctl32MRRError), test.ShouldEqual, "MRR_ERROR")
}

func TestMasterSummaryBitIgnored(t *testing.T) {
	c, sim := newController(t, lpddr4.PHY16)
	l := lpddr4.PHY16.Layout()
	sim.Poke(sim.Addr(l.IntStatusMaster), 1<<31)
	for id := lpddr4.CtlInterrupt(0); int(id) < lpddr4.PHY16.CtlInterrupts(); id++ {
		asserted, err := c.CheckCtlInterrupt(id)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, asserted, test.ShouldBeFalse)
	}

	// a group bit without its master bit does not count
	sim.Poke(sim.Addr(l.IntStatusTimeout), 1<<7)
	asserted, err := c.CheckCtlInterrupt(lpddr4.Ctl16TimeoutZQCalInit)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, asserted, test.ShouldBeFalse)
	sim.SetBits(sim.Addr(l.IntStatusMaster), 1<<0)
	asserted, err = c.CheckCtlInterrupt(lpddr4.Ctl16TimeoutZQCalInit)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, asserted, test.ShouldBeTrue)
}

func TestCtlInterruptMask(t *testing.T) {
	c, sim := newController(t, lpddr4.PHY16)
	test.That(t, c.SetCtlInterruptMask(0xFFFFFFFF), test.ShouldBeNil)
	mask, err := c.GetCtlInterruptMask()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mask, test.ShouldEqual, uint64(0xFFFFFFFF))
	test.That(t, sim.Peek(sim.Addr(lpddr4.PHY16.Layout().IntMaskMaster)), test.ShouldEqual, uint32(0xFFFFFFFF))
	err = c.SetCtlInterruptMask(1 << 32)
	test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)

	c, sim = newController(t, lpddr4.PHY32)
	want := uint64(1)<<44 | uint64(1)<<32 | 0x80000001
	test.That(t, c.SetCtlInterruptMask(want), test.ShouldBeNil)
	mask, err = c.GetCtlInterruptMask()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mask, test.ShouldEqual, want)
	l := lpddr4.PHY32.Layout()
	test.That(t, sim.Peek(sim.Addr(l.IntMask[0])), test.ShouldEqual, uint32(0x80000001))
	test.That(t, sim.Peek(sim.Addr(l.IntMask[1])), test.ShouldEqual, uint32(1<<12|1))
	err = c.SetCtlInterruptMask(1 << 45)
	test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)
}

func TestPhyIndepInterrupts(t *testing.T) {
	for id := lpddr4.PIInitDone; id <= lpddr4.PIDLLLockStateChange; id++ {
		c, sim := newController(t, lpddr4.PHY32)
		sim.AssertPhyIndep(id)
		for other := lpddr4.PIInitDone; other <= lpddr4.PIDLLLockStateChange; other++ {
			asserted, err := c.CheckPhyIndepInterrupt(other)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, asserted, test.ShouldEqual, other == id)
		}
		test.That(t, c.AckPhyIndepInterrupt(id), test.ShouldBeNil)
		asserted, err := c.CheckPhyIndepInterrupt(id)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, asserted, test.ShouldBeFalse)
	}

	c, _ := newController(t, lpddr4.PHY16)
	test.That(t, c.SetPhyIndepInterruptMask(0x1FFFF), test.ShouldBeNil)
	mask, err := c.GetPhyIndepInterruptMask()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mask, test.ShouldEqual, uint32(0x1FFFF))
	test.That(t, lpddr4.PIBistDone.String(), test.ShouldEqual, "PI_BIST_DONE")
}

func TestServiceInterrupts(t *testing.T) {
	sim := newSim(lpddr4.PHY32)
	type call struct {
		ctl bool
		id  uint32
		cs  uint8
	}
	var calls []call
	cfg := sim.Config()
	cfg.CtlInterruptHandler = func(c *lpddr4.Controller, id lpddr4.CtlInterrupt, cs uint8) {
		calls = append(calls, call{true, uint32(id), cs})
		test.That(t, c.AckCtlInterrupt(id), test.ShouldBeNil)
	}
	cfg.PhyIndepInterruptHandler = func(c *lpddr4.Controller, id lpddr4.PhyIndepInterrupt, cs uint8) {
		calls = append(calls, call{false, uint32(id), cs})
	}
	var c lpddr4.Controller
	test.That(t, c.Init(cfg), test.ShouldBeNil)

	sim.AssertCtl(lpddr4.Ctl32BistDone)
	sim.AssertCtl(lpddr4.Ctl32ZQStatus)
	sim.AssertPhyIndep(lpddr4.PILvlDone)
	test.That(t, c.ServiceInterrupts(1), test.ShouldBeNil)
	test.That(t, calls, test.ShouldResemble, []call{
		{true, uint32(lpddr4.Ctl32BistDone), 1},
		{true, uint32(lpddr4.Ctl32ZQStatus), 1},
		{false, uint32(lpddr4.PILvlDone), 1},
	})

	calls = nil
	test.That(t, c.ServiceInterrupts(0), test.ShouldBeNil)
	test.That(t, calls, test.ShouldResemble, []call{{false, uint32(lpddr4.PILvlDone), 0}})
}
