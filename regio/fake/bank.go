// Package fake implements a simulated register bank.
package fake

import (
	"sync"
)

// AccessKind tells reads from writes in the access log.
type AccessKind int

const (
	// Read is a register read.
	Read AccessKind = iota
	// Write is a register write.
	Write
)

func (k AccessKind) String() string {
	if k == Write {
		return "write"
	}
	return "read"
}

// Access is one recorded 32-bit access.
type Access struct {
	Kind  AccessKind
	Addr  uint64
	Value uint32
}

type delayEvent struct {
	at int
	fn func(b *Bank)
}

// Bank is a sparse simulated register space implementing regio.Port. Unwritten registers
// read as zero. Every access through the Port methods is recorded; Peek and Poke are not.
//
// Registers can be made write-one-to-clear acknowledge registers for a status register with
// MapAck, given bits that ignore writes with Stuck, and hooked with OnWrite. Functions queued
// with AfterDelays run when the delay count reaches their mark, which lets tests assert status
// bits after a known number of poll iterations.
type Bank struct {
	mu       sync.Mutex
	regs     map[uint64]uint32
	acks     map[uint64]uint64
	stuck    map[uint64]uint32
	hooks    map[uint64]func(b *Bank, value uint32)
	events   []delayEvent
	log      []Access
	delays   int
	delayNs  uint64
	barriers int
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{
		regs:  map[uint64]uint32{},
		acks:  map[uint64]uint64{},
		stuck: map[uint64]uint32{},
		hooks: map[uint64]func(b *Bank, value uint32){},
	}
}

// MapAck makes writes to ackAddr clear the written bits of statusAddr instead of storing.
func (b *Bank) MapAck(ackAddr, statusAddr uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.acks[ackAddr] = statusAddr
}

// Stuck makes the bits in mask of addr keep their value across writes.
func (b *Bank) Stuck(addr uint64, mask uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stuck[addr] = mask
}

// OnWrite runs fn after every Port write to addr. fn runs without the bank lock held, so it
// may call Peek and Poke.
func (b *Bank) OnWrite(addr uint64, fn func(b *Bank, value uint32)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks[addr] = fn
}

// AfterDelays runs fn when the n-th DelayNs call (counting from the bank's creation) happens.
func (b *Bank) AfterDelays(n int, fn func(b *Bank)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, delayEvent{at: n, fn: fn})
}

// Peek reads a register without recording it.
func (b *Bank) Peek(addr uint64) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.regs[addr]
}

// Poke writes a register without recording it or applying ack mappings.
func (b *Bank) Poke(addr uint64, value uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regs[addr] = value
}

// SetBits ORs bits into a register without recording it.
func (b *Bank) SetBits(addr uint64, bits uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regs[addr] |= bits
}

// Accesses returns a copy of the access log.
func (b *Bank) Accesses() []Access {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Access, len(b.log))
	copy(out, b.log)
	return out
}

// Writes returns the recorded writes to addr, in order.
func (b *Bank) Writes(addr uint64) []uint32 {
	return b.filter(Write, addr)
}

// Reads returns how many times addr was read.
func (b *Bank) Reads(addr uint64) int {
	return len(b.filter(Read, addr))
}

func (b *Bank) filter(kind AccessKind, addr uint64) []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []uint32
	for _, a := range b.log {
		if a.Kind == kind && a.Addr == addr {
			out = append(out, a.Value)
		}
	}
	return out
}

// ResetLog clears the access log and the delay statistics. Pending delay events keep their
// absolute marks.
func (b *Bank) ResetLog() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = nil
	b.delayNs = 0
	b.barriers = 0
}

// Delays returns how many DelayNs calls were made.
func (b *Bank) Delays() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.delays
}

// DelayedNs returns the total nanoseconds requested since the last ResetLog.
func (b *Bank) DelayedNs() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.delayNs
}

// Barriers returns how many barrier calls were made since the last ResetLog.
func (b *Bank) Barriers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.barriers
}

// Read32 implements regio.Port.
func (b *Bank) Read32(addr uint64) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := b.regs[addr]
	b.log = append(b.log, Access{Kind: Read, Addr: addr, Value: v})
	return v
}

// Write32 implements regio.Port.
func (b *Bank) Write32(addr uint64, value uint32) {
	b.mu.Lock()
	b.log = append(b.log, Access{Kind: Write, Addr: addr, Value: value})
	if status, ok := b.acks[addr]; ok {
		b.regs[status] &^= value
	} else {
		mask := b.stuck[addr]
		b.regs[addr] = (b.regs[addr] & mask) | (value &^ mask)
	}
	hook := b.hooks[addr]
	b.mu.Unlock()

	if hook != nil {
		hook(b, value)
	}
}

// DelayNs implements regio.Port. Due delay events run after the count is bumped.
func (b *Bank) DelayNs(ns uint32) {
	b.mu.Lock()
	b.delays++
	b.delayNs += uint64(ns)
	var due []func(b *Bank)
	pending := b.events[:0]
	for _, ev := range b.events {
		if ev.at <= b.delays {
			due = append(due, ev.fn)
			continue
		}
		pending = append(pending, ev)
	}
	b.events = pending
	b.mu.Unlock()

	for _, fn := range due {
		fn(b)
	}
}

func (b *Bank) word(addr uint64) (uint64, uint) {
	return addr &^ 3, uint(addr&3) * 8
}

// Read8 implements regio.Port on top of the containing word.
func (b *Bank) Read8(addr uint64) uint8 {
	w, shift := b.word(addr)
	return uint8(b.Read32(w) >> shift)
}

// Write8 implements regio.Port with a read-modify-write of the containing word.
func (b *Bank) Write8(addr uint64, value uint8) {
	w, shift := b.word(addr)
	b.Write32(w, (b.Peek(w)&^(0xFF<<shift))|uint32(value)<<shift)
}

// Read16 implements regio.Port on top of the containing word.
func (b *Bank) Read16(addr uint64) uint16 {
	w, shift := b.word(addr)
	return uint16(b.Read32(w) >> shift)
}

// Write16 implements regio.Port with a read-modify-write of the containing word.
func (b *Bank) Write16(addr uint64, value uint16) {
	w, shift := b.word(addr)
	b.Write32(w, (b.Peek(w)&^(0xFFFF<<shift))|uint32(value)<<shift)
}

// Read64 implements regio.Port as two word reads, low word first.
func (b *Bank) Read64(addr uint64) uint64 {
	lo := uint64(b.Read32(addr))
	return lo | uint64(b.Read32(addr+4))<<32
}

// Write64 implements regio.Port as two word writes, low word first.
func (b *Bank) Write64(addr uint64, value uint64) {
	b.Write32(addr, uint32(value))
	b.Write32(addr+4, uint32(value>>32))
}

// ReadUncached32 implements regio.Port.
func (b *Bank) ReadUncached32(addr uint64) uint32 {
	return b.Read32(addr)
}

// WriteUncached32 implements regio.Port.
func (b *Bank) WriteUncached32(addr uint64, value uint32) {
	b.Write32(addr, value)
}

// CacheInvalidate implements regio.Port.
func (b *Bank) CacheInvalidate(addr uint64, size int) {}

// CacheFlush implements regio.Port.
func (b *Bank) CacheFlush(addr uint64, size int) {}

// MemoryBarrier implements regio.Port.
func (b *Bank) MemoryBarrier() { b.barrier() }

// ReadBarrier implements regio.Port.
func (b *Bank) ReadBarrier() { b.barrier() }

// WriteBarrier implements regio.Port.
func (b *Bank) WriteBarrier() { b.barrier() }

func (b *Bank) barrier() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.barriers++
}
