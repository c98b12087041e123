// Package regio provides memory mapped register access for bring-up drivers.
package regio

// Delayer busy-waits for a number of nanoseconds.
type Delayer interface {
	DelayNs(ns uint32)
}

// Port is the register access capability a driver is constructed with. Addresses are physical
// byte addresses. Implementations do not report faults; a failed access is a platform bug.
type Port interface {
	Delayer

	Read8(addr uint64) uint8
	Write8(addr uint64, value uint8)
	Read16(addr uint64) uint16
	Write16(addr uint64, value uint16)
	Read32(addr uint64) uint32
	Write32(addr uint64, value uint32)
	Read64(addr uint64) uint64
	Write64(addr uint64, value uint64)

	// ReadUncached32 and WriteUncached32 bypass any data cache between the CPU and the device.
	ReadUncached32(addr uint64) uint32
	WriteUncached32(addr uint64, value uint32)

	CacheInvalidate(addr uint64, size int)
	CacheFlush(addr uint64, size int)

	MemoryBarrier()
	ReadBarrier()
	WriteBarrier()
}

// Block is a window of 32-bit registers at a fixed base inside a Port.
type Block struct {
	Port  Port
	Base  uint64
	Count uint32
}

// Addr returns the byte address of register index reg.
func (b Block) Addr(reg uint32) uint64 {
	return b.Base + uint64(reg)*4
}

// Read reads register index reg. The caller checks reg against Count.
func (b Block) Read(reg uint32) uint32 {
	return b.Port.Read32(b.Addr(reg))
}

// Write writes register index reg. The caller checks reg against Count.
func (b Block) Write(reg, value uint32) {
	b.Port.Write32(b.Addr(reg), value)
}
