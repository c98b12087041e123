package regio

import (
	"testing"

	"go.viam.com/test"
)

type countingDelay struct {
	calls int
	total uint64
}

func (d *countingDelay) DelayNs(ns uint32) {
	d.calls++
	d.total += uint64(ns)
}

func TestMMIO(t *testing.T) {
	const base = 0x0F300000
	mem := make([]byte, 64)
	delay := &countingDelay{}
	m := NewMMIO(mem, base, delay)

	m.Write32(base+4, 0xDEADBEEF)
	test.That(t, m.Read32(base+4), test.ShouldEqual, uint32(0xDEADBEEF))
	test.That(t, mem[4:8], test.ShouldResemble, []byte{0xEF, 0xBE, 0xAD, 0xDE})
	test.That(t, m.Read8(base+7), test.ShouldEqual, uint8(0xDE))
	test.That(t, m.Read16(base+4), test.ShouldEqual, uint16(0xBEEF))

	m.Write64(base+8, 0x0123456789ABCDEF)
	test.That(t, m.Read32(base+8), test.ShouldEqual, uint32(0x89ABCDEF))
	test.That(t, m.Read32(base+12), test.ShouldEqual, uint32(0x01234567))
	test.That(t, m.Read64(base+8), test.ShouldEqual, uint64(0x0123456789ABCDEF))

	m.WriteUncached32(base+16, 7)
	test.That(t, m.ReadUncached32(base+16), test.ShouldEqual, uint32(7))

	m.Write8(base+20, 0xAA)
	m.Write16(base+22, 0x5555)
	test.That(t, m.Read32(base+20), test.ShouldEqual, uint32(0x555500AA))

	m.DelayNs(10)
	m.DelayNs(5)
	test.That(t, delay.calls, test.ShouldEqual, 2)
	test.That(t, delay.total, test.ShouldEqual, uint64(15))

	test.That(t, func() { m.Read32(base + 62) }, test.ShouldPanic)
	test.That(t, func() { m.Read32(base - 4) }, test.ShouldPanic)
	test.That(t, m.Close(), test.ShouldBeNil)
}

func TestBlock(t *testing.T) {
	mem := make([]byte, 0x100)
	m := NewMMIO(mem, 0x1000, &countingDelay{})
	blk := Block{Port: m, Base: 0x1080, Count: 4}
	test.That(t, blk.Addr(3), test.ShouldEqual, uint64(0x108C))
	blk.Write(3, 42)
	test.That(t, m.Read32(0x108C), test.ShouldEqual, uint32(42))
	test.That(t, blk.Read(3), test.ShouldEqual, uint32(42))
}
