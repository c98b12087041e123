// Package qspi calibrates the read path of a Cadence QSPI/OSPI flash controller: the
// read-data-capture delay for legacy mode and the PHY RX/TX DLL delays for PHY mode.
package qspi

import (
	"go.viam.com/k3ddrss/regio"
)

// Register byte offsets.
const (
	regConfig      = 0x00
	regDelay       = 0x0C
	regReadCapture = 0x10
	regPHYConfig   = 0xB4
)

var (
	configEnable = regio.Bit(0)
	configPHY    = regio.Bit(3)
	configBaud   = regio.Field{Shift: 19, Width: 4}

	delayTSD2D = regio.Field{Shift: 0, Width: 8}
	delayTSLCH = regio.Field{Shift: 8, Width: 8}
	delayTCHSH = regio.Field{Shift: 16, Width: 8}
	delayTSHSL = regio.Field{Shift: 24, Width: 8}

	captureBypass = regio.Bit(0)
	captureDelay  = regio.Field{Shift: 1, Width: 4}

	phyRX     = regio.Field{Shift: 0, Width: 7}
	phyTX     = regio.Field{Shift: 16, Width: 7}
	phyReset  = regio.Bit(30)
	phyResync = regio.Bit(31)
)

const maxBaudDivider = 15

// Timing holds the flash device timing in nanoseconds.
type Timing struct {
	TSHSL uint32
	TSD2D uint32
	TCHSH uint32
	TSLCH uint32
}

// Controller is the register model of one QSPI controller instance.
type Controller struct {
	regs     regio.Block
	refClkHz uint32
}

// NewController returns a controller whose registers start at base. refClkHz is the
// controller reference clock.
func NewController(port regio.Port, base uint64, refClkHz uint32) *Controller {
	return &Controller{regs: regio.Block{Port: port, Base: base, Count: regPHYConfig/4 + 1}, refClkHz: refClkHz}
}

func (c *Controller) read(off uint32) uint32 {
	return c.regs.Read(off / 4)
}

func (c *Controller) write(off, v uint32) {
	c.regs.Write(off/4, v)
}

func (c *Controller) update(off uint32, f regio.Field, v uint32) {
	c.write(off, f.Write(c.read(off), v))
}

// Enable turns the controller on.
func (c *Controller) Enable() {
	c.update(regConfig, configEnable, 1)
}

// Disable turns the controller off. Timing registers may only change while it is off.
func (c *Controller) Disable() {
	c.update(regConfig, configEnable, 0)
}

// Enabled reports whether the controller is on.
func (c *Controller) Enabled() bool {
	return configEnable.Read(c.read(regConfig)) == 1
}

// BaudDivider returns the divider field that yields at most hz from the reference clock.
func (c *Controller) BaudDivider(hz uint32) uint32 {
	if hz == 0 {
		return maxBaudDivider
	}
	div := (c.refClkHz + 2*hz - 1) / (2 * hz)
	if div > 0 {
		div--
	}
	if div > maxBaudDivider {
		div = maxBaudDivider
	}
	return div
}

// SCLK returns the serial clock the current divider produces.
func (c *Controller) SCLK() uint32 {
	return c.refClkHz / (2 * (configBaud.Read(c.read(regConfig)) + 1))
}

// SetBaud programs the divider for hz.
func (c *Controller) SetBaud(hz uint32) {
	c.update(regConfig, configBaud, c.BaudDivider(hz))
}

// SetDelay converts the device timing into reference clock cycles at hz and programs it.
func (c *Controller) SetDelay(hz uint32, t Timing) {
	if hz == 0 {
		hz = 1
	}
	refNs := (1000000000 + c.refClkHz - 1) / c.refClkHz
	sclkNs := (1000000000 + hz - 1) / hz
	cycles := func(ns uint32) uint32 {
		n := (ns + refNs - 1) / refNs
		if n > 0xFF {
			n = 0xFF
		}
		return n
	}

	tslch := t.TSLCH
	// tslch and tchsh are measured from the clock edge, which the controller already waits
	// half a serial clock for.
	if tslch > sclkNs/2 {
		tslch -= sclkNs / 2
	} else {
		tslch = 0
	}
	tchsh := t.TCHSH
	if tchsh > sclkNs/2 {
		tchsh -= sclkNs / 2
	} else {
		tchsh = 0
	}

	var v uint32
	v = delayTSHSL.Write(v, cycles(t.TSHSL))
	v = delayTCHSH.Write(v, cycles(tchsh))
	v = delayTSLCH.Write(v, cycles(tslch))
	v = delayTSD2D.Write(v, cycles(t.TSD2D))
	c.write(regDelay, v)
}

// SetReadCapture programs the read-data-capture logic. bypass selects the adapted loopback
// clock; delay is in reference clock cycles.
func (c *Controller) SetReadCapture(bypass bool, delay uint32) {
	v := c.read(regReadCapture)
	if bypass {
		v = captureBypass.Set(v)
	} else {
		v = captureBypass.Clear(v)
	}
	c.write(regReadCapture, captureDelay.Write(v, delay))
}

// ReadCaptureDelay returns the programmed capture delay.
func (c *Controller) ReadCaptureDelay() uint32 {
	return captureDelay.Read(c.read(regReadCapture))
}

// SetPHY switches PHY mode on or off.
func (c *Controller) SetPHY(on bool) {
	var v uint32
	if on {
		v = 1
	}
	c.update(regPHYConfig, phyReset, 0)
	c.update(regConfig, configPHY, v)
}

// PHYEnabled reports whether PHY mode is on.
func (c *Controller) PHYEnabled() bool {
	return configPHY.Read(c.read(regConfig)) == 1
}

// SetDLL programs the PHY RX and TX delay lines and resynchronizes them.
func (c *Controller) SetDLL(rx, tx int) {
	v := c.read(regPHYConfig)
	v = phyRX.Write(v, uint32(rx))
	v = phyTX.Write(v, uint32(tx))
	v = phyReset.Set(v)
	c.write(regPHYConfig, v)
	c.write(regPHYConfig, phyResync.Set(v))
}

// DLL returns the programmed PHY RX and TX delays.
func (c *Controller) DLL() (rx, tx int) {
	v := c.read(regPHYConfig)
	return int(phyRX.Read(v)), int(phyTX.Read(v))
}
