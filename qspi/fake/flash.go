// Package fake implements a simulated SPI-NOR flash whose reads only come back intact when the
// controller's delay settings fall inside configured windows.
package fake

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/k3ddrss/qspi"
)

// DefaultID is the JEDEC ID the simulated flash reports.
var DefaultID = []byte{0x2C, 0x5B, 0x1A}

// Region is a block of PHY settings at one read delay that reads back correctly.
type Region struct {
	ReadDelay int
	TXMin     int
	TXMax     int
	RXMin     int
	RXMax     int
}

// Contains reports whether s is inside the region.
func (r Region) Contains(s qspi.Setting) bool {
	return s.ReadDelay == r.ReadDelay &&
		s.TX >= r.TXMin && s.TX <= r.TXMax &&
		s.RX >= r.RXMin && s.RX <= r.RXMax
}

// Flash is a simulated flash behind a qspi.Controller. In PHY mode a read is intact when the
// programmed delays fall in one of Regions. Otherwise it is intact when the serial clock is at
// most SlowHz or the capture delay is within [CaptureLow, CaptureHigh]. Broken reads return
// inverted data.
type Flash struct {
	Ctrl         *qspi.Controller
	ID           []byte
	PatternStart uint32
	// NoPattern makes the pattern partition read as erased.
	NoPattern bool
	Regions   []Region

	SlowHz      uint32
	CaptureLow  uint32
	CaptureHigh uint32

	mu      sync.Mutex
	idReads int
	reads   int
}

// NewFlash returns a flash with the default ID and the pattern at patternStart.
func NewFlash(ctrl *qspi.Controller, patternStart uint32, regions ...Region) *Flash {
	return &Flash{
		Ctrl:         ctrl,
		ID:           DefaultID,
		PatternStart: patternStart,
		Regions:      regions,
		SlowHz:       1000000,
		CaptureLow:   0,
		CaptureHigh:  15,
	}
}

// Reads returns how many data reads were made.
func (f *Flash) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// IDReads returns how many ID reads were made.
func (f *Flash) IDReads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idReads
}

func (f *Flash) intact() bool {
	if f.Ctrl.PHYEnabled() {
		rx, tx := f.Ctrl.DLL()
		s := qspi.Setting{TX: tx, RX: rx, ReadDelay: int(f.Ctrl.ReadCaptureDelay())}
		for _, r := range f.Regions {
			if r.Contains(s) {
				return true
			}
		}
		return false
	}
	if f.Ctrl.SCLK() <= f.SlowHz {
		return true
	}
	d := f.Ctrl.ReadCaptureDelay()
	return d >= f.CaptureLow && d <= f.CaptureHigh
}

func corrupt(b []byte) {
	for i := range b {
		b[i] = ^b[i]
	}
}

// ReadID implements qspi.Flash.
func (f *Flash) ReadID(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.idReads++
	f.mu.Unlock()
	if !f.Ctrl.Enabled() {
		return nil, errors.New("controller disabled")
	}
	id := append([]byte(nil), f.ID...)
	if !f.intact() {
		corrupt(id)
	}
	return id, nil
}

// Read implements qspi.Flash.
func (f *Flash) Read(ctx context.Context, addr uint32, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.reads++
	f.mu.Unlock()

	for i := range buf {
		buf[i] = 0xFF
	}
	if addr == f.PatternStart && !f.NoPattern {
		copy(buf, qspi.TuningPattern())
	}
	if !f.intact() {
		corrupt(buf)
	}
	return nil
}

// Thermal is a fixed temperature reading.
type Thermal struct {
	Celsius int
	Err     error
}

// Temperature implements qspi.Thermal.
func (t Thermal) Temperature(ctx context.Context) (int, error) {
	return t.Celsius, t.Err
}
