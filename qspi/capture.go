package qspi

import (
	"bytes"
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"go.viam.com/k3ddrss/logging"
)

const (
	// captureCalibrationHz is the clock the golden ID is read at.
	captureCalibrationHz = 1000000
	maxCaptureDelay      = 15

	// DefaultMaxHz is the default spi-max-frequency.
	DefaultMaxHz = 500000
)

// ErrNoCaptureDelay is returned when no read capture delay reads the flash ID correctly.
var ErrNoCaptureDelay = errors.New("no passing read capture delay")

// CaptureResult describes a read capture calibration.
type CaptureResult struct {
	Hz uint32 `json:"hz"`
	// Low and High bound the first range of passing capture delays.
	Low   int `json:"low"`
	High  int `json:"high"`
	Delay int `json:"delay"`
}

// CaptureConfig configures a CaptureCalibrator.
type CaptureConfig struct {
	Controller *Controller
	Flash      Flash
	Logger     logging.Logger
	Timing     Timing

	// MaxHz caps every requested speed. Zero selects DefaultMaxHz.
	MaxHz uint32
	// ReadDelay, when non-negative, is used instead of calibrating.
	ReadDelay int
}

// CaptureCalibrator keeps the read-data-capture delay matched to the bus speed.
type CaptureCalibrator struct {
	ctrl   *Controller
	flash  Flash
	logger logging.Logger
	timing Timing

	maxHz     uint32
	readDelay int

	previousHz   uint32
	calibratedHz uint32
	calibratedCS int
	last         CaptureResult
}

// NewCaptureCalibrator returns a calibrator for cfg.
func NewCaptureCalibrator(cfg CaptureConfig) *CaptureCalibrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewBlankLogger("qspi.capture")
	} else {
		logger = logger.Sublogger("qspi.capture")
	}
	c := &CaptureCalibrator{
		ctrl:         cfg.Controller,
		flash:        cfg.Flash,
		logger:       logger,
		timing:       cfg.Timing,
		maxHz:        cfg.MaxHz,
		readDelay:    cfg.ReadDelay,
		calibratedCS: -1,
	}
	if c.maxHz == 0 {
		c.maxHz = DefaultMaxHz
	}
	return c
}

// Last returns the result of the most recent successful calibration.
func (c *CaptureCalibrator) Last() CaptureResult {
	return c.last
}

func (c *CaptureCalibrator) writeSpeed(hz uint32) {
	c.ctrl.SetBaud(hz)
	c.ctrl.SetDelay(hz, c.timing)
}

// Calibrate reads the flash ID at a slow clock as the golden value, then sweeps the capture
// delay at hz and settles in the middle of the first passing range. The controller is left
// disabled.
func (c *CaptureCalibrator) Calibrate(ctx context.Context, hz uint32) (CaptureResult, error) {
	c.writeSpeed(captureCalibrationHz)
	c.ctrl.SetReadCapture(true, 0)
	c.ctrl.Enable()
	golden, err := c.flash.ReadID(ctx)
	if err != nil {
		return CaptureResult{}, errors.Wrap(err, "reading golden flash ID")
	}
	c.logger.Debugw("golden flash ID", "id", golden)

	c.writeSpeed(hz)

	var passing stats.Float64Data
	for i := 0; i <= maxCaptureDelay; i++ {
		c.ctrl.Disable()
		c.ctrl.SetReadCapture(true, uint32(i))
		c.ctrl.Enable()

		id, err := c.flash.ReadID(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return CaptureResult{}, ctx.Err()
			}
			c.logger.Debugw("flash ID read failed", "delay", i, "error", err)
		}
		match := err == nil && bytes.Equal(id, golden)
		if match {
			passing = append(passing, float64(i))
		} else if len(passing) > 0 {
			break
		}
	}
	c.ctrl.Disable()

	if len(passing) == 0 {
		return CaptureResult{}, errors.Wrapf(ErrNoCaptureDelay, "at %d Hz", hz)
	}
	lo, err := passing.Min()
	if err != nil {
		return CaptureResult{}, err
	}
	hi, err := passing.Max()
	if err != nil {
		return CaptureResult{}, err
	}
	mean, err := passing.Mean()
	if err != nil {
		return CaptureResult{}, err
	}
	res := CaptureResult{Hz: hz, Low: int(lo), High: int(hi), Delay: int(math.Floor(mean))}
	c.ctrl.SetReadCapture(true, uint32(res.Delay))
	c.logger.Debugw("read capture calibrated", "hz", hz, "low", res.Low, "high", res.High, "delay", res.Delay)
	c.last = res
	return res, nil
}

// SetSpeed switches the bus to hz for chip select cs. hz above the maximum, or zero, selects
// the maximum. A configured read delay is used as is; otherwise the capture delay is
// recalibrated when the speed or chip select changed since the last calibration.
func (c *CaptureCalibrator) SetSpeed(ctx context.Context, hz uint32, cs int) error {
	if hz == 0 || hz > c.maxHz {
		hz = c.maxHz
	}
	c.ctrl.Disable()

	if c.readDelay >= 0 {
		c.writeSpeed(hz)
		c.ctrl.SetReadCapture(true, uint32(c.readDelay))
	} else if c.previousHz != hz || c.calibratedHz != hz || c.calibratedCS != cs {
		if _, err := c.Calibrate(ctx, hz); err != nil {
			return err
		}
		c.calibratedHz = hz
		c.calibratedCS = cs
		c.previousHz = hz
	}

	c.ctrl.Enable()
	c.logger.Debugw("bus speed set", "hz", hz, "sclk", c.ctrl.SCLK(), "cs", cs)
	return nil
}
