package regio

import (
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"periph.io/x/host/v3/pmem"
)

const devMem = "/dev/mem"

// MMIO is a Port over a mapped window of physical memory starting at Base. 32-bit accesses are
// single atomic loads and stores, which Go orders sequentially, so the barriers are no-ops. The
// mapping is uncached (O_SYNC), so the cache maintenance calls are no-ops as well.
type MMIO struct {
	Delayer

	base   uint64
	mem    []byte
	closer func() error
}

// NewMMIO wraps an existing mapping of physical memory starting at base.
func NewMMIO(mem []byte, base uint64, delay Delayer) *MMIO {
	if delay == nil {
		delay = NewClockDelay()
	}
	return &MMIO{Delayer: delay, base: base, mem: mem}
}

// OpenDevMem maps size bytes of physical memory at base through /dev/mem.
func OpenDevMem(base uint64, size int, delay Delayer) (*MMIO, error) {
	pageSize := uint64(os.Getpagesize())
	aligned := base &^ (pageSize - 1)
	skew := int(base - aligned)

	f, err := os.OpenFile(devMem, os.O_RDWR|os.O_SYNC, 0o600)
	if err != nil {
		return nil, errors.Wrap(err, "opening "+devMem)
	}
	//nolint:errcheck
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), int64(aligned), size+skew, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping %#x", base)
	}
	m := NewMMIO(mem[skew:], base, delay)
	m.closer = func() error { return unix.Munmap(mem) }
	return m, nil
}

// OpenPhysical maps size bytes at base through periph's physical memory driver, which picks
// the right mechanism for the host.
func OpenPhysical(base uint64, size int, delay Delayer) (*MMIO, error) {
	view, err := pmem.Map(base, size)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping %#x", base)
	}
	m := NewMMIO(view.Bytes(), base, delay)
	m.closer = view.Close
	return m, nil
}

// Close releases the mapping.
func (m *MMIO) Close() error {
	if m.closer == nil {
		return nil
	}
	closer := m.closer
	m.closer = nil
	return closer()
}

func (m *MMIO) ptr(addr uint64, size int) unsafe.Pointer {
	if addr < m.base || addr-m.base+uint64(size) > uint64(len(m.mem)) {
		panic(errors.Errorf("register access at %#x outside mapped window [%#x, %#x)",
			addr, m.base, m.base+uint64(len(m.mem))))
	}
	return unsafe.Pointer(&m.mem[addr-m.base])
}

// Read8 reads one byte.
func (m *MMIO) Read8(addr uint64) uint8 {
	return *(*uint8)(m.ptr(addr, 1))
}

// Write8 writes one byte.
func (m *MMIO) Write8(addr uint64, value uint8) {
	*(*uint8)(m.ptr(addr, 1)) = value
}

// Read16 reads a half word.
func (m *MMIO) Read16(addr uint64) uint16 {
	return *(*uint16)(m.ptr(addr, 2))
}

// Write16 writes a half word.
func (m *MMIO) Write16(addr uint64, value uint16) {
	*(*uint16)(m.ptr(addr, 2)) = value
}

// Read32 reads a word.
func (m *MMIO) Read32(addr uint64) uint32 {
	return atomic.LoadUint32((*uint32)(m.ptr(addr, 4)))
}

// Write32 writes a word.
func (m *MMIO) Write32(addr uint64, value uint32) {
	atomic.StoreUint32((*uint32)(m.ptr(addr, 4)), value)
}

// Read64 reads two words, low word first.
func (m *MMIO) Read64(addr uint64) uint64 {
	lo := uint64(m.Read32(addr))
	return lo | uint64(m.Read32(addr+4))<<32
}

// Write64 writes two words, low word first.
func (m *MMIO) Write64(addr uint64, value uint64) {
	m.Write32(addr, uint32(value))
	m.Write32(addr+4, uint32(value>>32))
}

// ReadUncached32 is Read32; the mapping is already uncached.
func (m *MMIO) ReadUncached32(addr uint64) uint32 {
	return m.Read32(addr)
}

// WriteUncached32 is Write32; the mapping is already uncached.
func (m *MMIO) WriteUncached32(addr uint64, value uint32) {
	m.Write32(addr, value)
}

// CacheInvalidate is a no-op.
func (m *MMIO) CacheInvalidate(addr uint64, size int) {}

// CacheFlush is a no-op.
func (m *MMIO) CacheFlush(addr uint64, size int) {}

// MemoryBarrier is a no-op.
func (m *MMIO) MemoryBarrier() {}

// ReadBarrier is a no-op.
func (m *MMIO) ReadBarrier() {}

// WriteBarrier is a no-op.
func (m *MMIO) WriteBarrier() {}
