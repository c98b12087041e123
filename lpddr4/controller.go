// Package lpddr4 brings up and calibrates a Cadence LPDDR4 controller (K3 DDRSS) through a
// register access port.
package lpddr4

import (
	"unsafe"

	"go.viam.com/k3ddrss/logging"
	"go.viam.com/k3ddrss/regio"
)

// Default polling budget of the start sequence.
const (
	DefaultPollDelayNs       = 10000000
	DefaultPollMaxIterations = 100000000

	mrDoneIterations   = 1000
	mrrErrorIterations = 100
)

// Config describes one controller. It is consumed by Init and not retained.
type Config struct {
	// Base is the physical address of the controller register block.
	Base    uint64
	Port    regio.Port
	Variant Variant
	Logger  logging.Logger

	// InfoHandler is told about sequence events such as InfoSocPLLUpdate.
	InfoHandler func(c *Controller, info InfoType)
	// CtlInterruptHandler and PhyIndepInterruptHandler are called by ServiceInterrupts.
	CtlInterruptHandler      func(c *Controller, id CtlInterrupt, chipSelect uint8)
	PhyIndepInterruptHandler func(c *Controller, id PhyIndepInterrupt, chipSelect uint8)

	// VerifyWrites re-reads every WriteReg under Masks.
	VerifyWrites bool
	Masks        *RWMasks

	// Zero selects DefaultPollDelayNs and DefaultPollMaxIterations.
	PollDelayNs       uint32
	PollMaxIterations uint32
}

// Controller is a caller owned controller handle. The zero value is uninitialized; every
// operation on it, or on a nil *Controller, fails with ErrInvalidArgument before touching
// hardware.
type Controller struct {
	initialized bool
	base        uint64
	port        regio.Port
	variant     Variant
	layout      *Layout
	logger      logging.Logger

	infoHandler              func(c *Controller, info InfoType)
	ctlInterruptHandler      func(c *Controller, id CtlInterrupt, chipSelect uint8)
	phyIndepInterruptHandler func(c *Controller, id PhyIndepInterrupt, chipSelect uint8)

	verify bool
	masks  *RWMasks

	pollDelayNs uint32
	pollMax     uint32
}

// Probe validates cfg and reports the size of the handle Init fills in.
func Probe(cfg *Config) (uint16, error) {
	if err := validateConfig(cfg); err != nil {
		return 0, err
	}
	return uint16(unsafe.Sizeof(Controller{})), nil
}

// Init prepares c for cfg. It does not access hardware. On error c is left untouched.
func (c *Controller) Init(cfg *Config) error {
	if c == nil {
		return invalidf("nil controller")
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewBlankLogger("lpddr4")
	} else {
		logger = logger.Sublogger("lpddr4")
	}
	*c = Controller{
		initialized:              true,
		base:                     cfg.Base,
		port:                     cfg.Port,
		variant:                  cfg.Variant,
		layout:                   cfg.Variant.Layout(),
		logger:                   logger,
		infoHandler:              cfg.InfoHandler,
		ctlInterruptHandler:      cfg.CtlInterruptHandler,
		phyIndepInterruptHandler: cfg.PhyIndepInterruptHandler,
		verify:                   cfg.VerifyWrites,
		masks:                    cfg.Masks,
		pollDelayNs:              cfg.PollDelayNs,
		pollMax:                  cfg.PollMaxIterations,
	}
	if c.pollDelayNs == 0 {
		c.pollDelayNs = DefaultPollDelayNs
	}
	if c.pollMax == 0 {
		c.pollMax = DefaultPollMaxIterations
	}
	c.logger.Debugw("controller initialized", "variant", c.variant.Name(), "base", c.base)
	return nil
}

// Variant returns the variant the controller was initialized with, or nil.
func (c *Controller) Variant() Variant {
	if c == nil {
		return nil
	}
	return c.variant
}

// Start runs the start sequence: it enables the PI initiator, sets the PI and controller start
// bits, reports InfoSocPLLUpdate and then blocks until PI init done and controller init done
// have both asserted and been acknowledged. A timeout aborts the sequence where it is; nothing
// is rolled back.
func (c *Controller) Start() error {
	if err := c.guard(); err != nil {
		return err
	}
	return c.startSequence()
}

func (c *Controller) startSequence() error {
	l := c.layout
	c.variant.enablePIInitiator(c)
	c.setField(l.PIStart)
	c.setField(l.Start)
	c.logger.Debug("start bits set")
	if c.infoHandler != nil {
		c.infoHandler(c, InfoSocPLLUpdate)
	}
	return c.pollAndAck()
}

func (c *Controller) pollAndAck() error {
	if err := c.pollPhyIndep(PIInitDone, c.pollMax); err != nil {
		return err
	}
	c.ackPhyIndep(PIInitDone)

	done := c.variant.mcInitDone()
	if err := c.pollCtl(done, c.pollMax); err != nil {
		return err
	}
	loc, err := c.variant.Locate(done)
	if err != nil {
		return err
	}
	c.ackCtl(loc)
	c.logger.Debug("controller init done")
	return nil
}

func (c *Controller) addr(r Reg) uint64 {
	return r.Addr(c.base)
}

func (c *Controller) read(r Reg) uint32 {
	return c.port.Read32(c.addr(r))
}

func (c *Controller) write(r Reg, v uint32) {
	c.port.Write32(c.addr(r), v)
}

func (c *Controller) readField(r Reg) uint32 {
	return r.Field.Read(c.read(r))
}

// writeField replaces the field and keeps the rest of the register.
func (c *Controller) writeField(r Reg, v uint32) {
	c.write(r, r.Field.Write(c.read(r), v))
}

func (c *Controller) setField(r Reg) {
	c.write(r, r.Field.Set(c.read(r)))
}
